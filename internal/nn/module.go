// Package nn provides neural network building blocks: layers, activations,
// loss functions and parameter management.
//
// Modules compose through the Module interface. Each module exposes its
// trainable parameters so optimizers and checkpointing can traverse a model
// without knowing its structure.
package nn

import "github.com/ember-ml/ember/internal/tensor"

// Module is the interface implemented by all neural network layers and models.
type Module[B tensor.Backend] interface {
	// Forward computes the module's output for the given input.
	Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the module's trainable parameters.
	// Modules without parameters (activations) return nil.
	Parameters() []*Parameter[B]
}

// ZeroGrad clears the gradients of all parameters in a module.
func ZeroGrad[B tensor.Backend](m Module[B]) {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}
