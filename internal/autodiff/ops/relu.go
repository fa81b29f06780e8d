package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// ReLUOp represents the rectified linear unit activation: max(0, x).
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLU operation.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{
		input:  input,
		output: output,
	}
}

// Inputs returns the input tensors.
func (op *ReLUOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *ReLUOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the gradient for ReLU.
//
// d(ReLU(x))/dx = 1 if x > 0, else 0. The gradient passes through where the
// input was positive and is blocked elsewhere.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	inputGrad, err := tensor.NewRaw(op.input.Shape(), op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("relu backward: %v", err))
	}

	switch op.input.DType() {
	case tensor.Float32:
		in := op.input.AsFloat32()
		grad := outputGrad.AsFloat32()
		dst := inputGrad.AsFloat32()
		for i, v := range in {
			if v > 0 {
				dst[i] = grad[i]
			}
		}
	case tensor.Float64:
		in := op.input.AsFloat64()
		grad := outputGrad.AsFloat64()
		dst := inputGrad.AsFloat64()
		for i, v := range in {
			if v > 0 {
				dst[i] = grad[i]
			}
		}
	default:
		panic(fmt.Sprintf("relu backward: unsupported dtype %s", op.input.DType()))
	}

	return []*tensor.RawTensor{inputGrad}
}
