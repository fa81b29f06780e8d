// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface: the forward pass is
// computed by the wrapped backend, and Backward computes input gradients
// given the output gradient.
//
// Supported operations:
//   - AddOp / SubOp / MulOp / DivOp: element-wise arithmetic
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - TransposeOp / ReshapeOp: shape operations (gradients flow back through views)
//   - TanhOp / SigmoidOp / ReLUOp: activations
//   - BCEWithLogitsOp: fused binary cross-entropy loss with closed-form backward
package ops

import "github.com/ember-ml/ember/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
