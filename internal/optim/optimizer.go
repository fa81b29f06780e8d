// Package optim provides gradient-based optimizers.
package optim

import "github.com/ember-ml/ember/internal/tensor"

// Optimizer updates model parameters from their accumulated gradients.
type Optimizer[B tensor.Backend] interface {
	// Step applies one update using each parameter's current gradient.
	// Parameters with no accumulated gradient are skipped.
	Step() error

	// ZeroGrad clears the gradients of all managed parameters.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}
