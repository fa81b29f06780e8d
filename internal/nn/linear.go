package nn

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ember-ml/ember/internal/tensor"
)

// Linear applies an affine transformation: y = x @ W^T + b.
//
// Weight shape is [outFeatures, inFeatures], bias shape is [outFeatures].
// Weights are initialized with Xavier uniform, biases with zeros.
type Linear[B tensor.Backend] struct {
	weight *Parameter[B]
	bias   *Parameter[B]

	inFeatures  int
	outFeatures int
}

// NewLinear creates a linear layer with the given dimensions.
// If rng is nil, a time-seeded source is used.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, rng *rand.Rand) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("nn: invalid Linear dimensions [%d, %d]", inFeatures, outFeatures))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	weight := xavierUniform(inFeatures, outFeatures, backend, rng)
	bias := zeros[B](tensor.Shape{outFeatures}, backend)

	return &Linear[B]{
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
	}
}

// Forward computes x @ W^T + b.
// Input shape [batch, inFeatures], output shape [batch, outFeatures].
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("nn: Linear expects 2D input, got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("nn: Linear expects %d input features, got %d", l.inFeatures, shape[1]))
	}

	out := x.MatMul(l.weight.Tensor().T())

	// Reshape bias to [1, outFeatures] so it broadcasts over the batch
	b := l.bias.Tensor().Reshape(1, l.outFeatures)
	return out.Add(b)
}

// Parameters returns the weight and bias parameters.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the input dimension.
func (l *Linear[B]) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output dimension.
func (l *Linear[B]) OutFeatures() int { return l.outFeatures }
