// Package model holds the shared estimator contracts and the fitted-state
// bookkeeping every scaler and classifier in this module composes.
package model

import "fmt"

// StateManager tracks whether an estimator has been fitted, together with
// the shape of the data it was fitted on. Estimators hold it by
// composition; a fitted estimator never mutates it again, so concurrent
// readers need no further coordination.
type StateManager struct {
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager returns an unfitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether Fit has completed successfully at least once.
func (s *StateManager) IsFitted() bool {
	return s.fitted
}

// SetFitted marks the estimator as fitted.
func (s *StateManager) SetFitted() {
	s.fitted = true
}

// Reset returns the estimator to the unfitted state. Refitting is always
// allowed; a subsequent Fit simply replaces the stored state.
func (s *StateManager) Reset() {
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}

// SetDimensions records the training-data shape seen during Fit.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Dimensions returns the number of features and samples seen during Fit.
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	return s.nFeatures, s.nSamples
}

// RequireFitted returns an error when Fit has not been called yet.
func (s *StateManager) RequireFitted() error {
	if !s.fitted {
		return fmt.Errorf("estimator has not been fitted yet. Call Fit() first")
	}
	return nil
}
