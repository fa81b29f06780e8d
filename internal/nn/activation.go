package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Capability interfaces for activation support. Backends advertise an
// activation by implementing the corresponding method; the activation
// modules discover support with a type assertion at call time.

// TanhBackend is implemented by backends that support the tanh activation.
type TanhBackend interface {
	Tanh(x *tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is implemented by backends that support sigmoid.
type SigmoidBackend interface {
	Sigmoid(x *tensor.RawTensor) *tensor.RawTensor
}

// ReLUBackend is implemented by backends that support ReLU.
type ReLUBackend interface {
	ReLU(x *tensor.RawTensor) *tensor.RawTensor
}

// Tanh is the hyperbolic tangent activation module.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

func (a *Tanh[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend, ok := any(x.Backend()).(TanhBackend)
	if !ok {
		panic(fmt.Sprintf("nn: backend %T does not support Tanh", x.Backend()))
	}
	return tensor.New[float32, B](backend.Tanh(x.Raw()), x.Backend())
}

func (a *Tanh[B]) Parameters() []*Parameter[B] { return nil }

// Sigmoid is the logistic activation module.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

func (a *Sigmoid[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend, ok := any(x.Backend()).(SigmoidBackend)
	if !ok {
		panic(fmt.Sprintf("nn: backend %T does not support Sigmoid", x.Backend()))
	}
	return tensor.New[float32, B](backend.Sigmoid(x.Raw()), x.Backend())
}

func (a *Sigmoid[B]) Parameters() []*Parameter[B] { return nil }

// ReLU is the rectified linear activation module.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

func (a *ReLU[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend, ok := any(x.Backend()).(ReLUBackend)
	if !ok {
		panic(fmt.Sprintf("nn: backend %T does not support ReLU", x.Backend()))
	}
	return tensor.New[float32, B](backend.ReLU(x.Raw()), x.Backend())
}

func (a *ReLU[B]) Parameters() []*Parameter[B] { return nil }
