package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Parameter is a trainable tensor with an associated gradient buffer.
//
// Gradients accumulate: each AccumulateGrad call adds into the stored
// gradient rather than replacing it, so a parameter used in several places
// (or trained with gradient accumulation across micro-batches) sums its
// contributions. ZeroGrad resets the buffer between optimizer steps.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.RawTensor
}

// NewParameter creates a named parameter wrapping the given tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name (e.g. "fc1.weight").
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the underlying tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the accumulated gradient, or nil if no gradient has been
// accumulated since the last ZeroGrad.
func (p *Parameter[B]) Grad() *tensor.RawTensor {
	return p.grad
}

// AccumulateGrad adds g into the stored gradient.
// The first call after ZeroGrad copies g; later calls sum element-wise.
// Panics if g's shape does not match the parameter shape.
func (p *Parameter[B]) AccumulateGrad(g *tensor.RawTensor) {
	if !g.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Sprintf("nn: gradient shape %v does not match parameter %q shape %v",
			g.Shape(), p.name, p.tensor.Shape()))
	}

	if p.grad == nil {
		buf, err := tensor.NewRaw(g.Shape().Clone(), g.DType(), g.Device())
		if err != nil {
			panic(err)
		}
		copy(buf.Data(), g.Data())
		p.grad = buf
		return
	}

	switch g.DType() {
	case tensor.Float32:
		dst := p.grad.AsFloat32()
		src := g.AsFloat32()
		for i := range dst {
			dst[i] += src[i]
		}
	case tensor.Float64:
		dst := p.grad.AsFloat64()
		src := g.AsFloat64()
		for i := range dst {
			dst[i] += src[i]
		}
	default:
		panic(fmt.Sprintf("nn: gradient accumulation not supported for dtype %s", g.DType()))
	}
}

// ZeroGrad discards the accumulated gradient.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
