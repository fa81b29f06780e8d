package nn

import (
	"fmt"
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// MLP is a two-layer feed-forward network:
//
//	fc1 (Linear) -> Tanh -> fc2 (Linear)
//
// The second layer produces raw logits; callers apply sigmoid (or a
// logits-based loss) themselves.
type MLP[B tensor.Backend] struct {
	fc1 *Linear[B]
	act *Tanh[B]
	fc2 *Linear[B]
}

// NewMLP creates a two-layer network with the given dimensions.
// If rng is nil, a time-seeded source is used; with a shared rng both
// layers draw from it in order, so initialization is reproducible.
func NewMLP[B tensor.Backend](inFeatures, hidden, outFeatures int, backend B, rng *rand.Rand) *MLP[B] {
	return &MLP[B]{
		fc1: NewLinear(inFeatures, hidden, backend, rng),
		act: NewTanh[B](),
		fc2: NewLinear(hidden, outFeatures, backend, rng),
	}
}

// Forward runs the network. Input shape [batch, inFeatures],
// output shape [batch, outFeatures] of raw logits.
func (m *MLP[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	h := m.fc1.Forward(x)
	h = m.act.Forward(h)
	return m.fc2.Forward(h)
}

// Parameters returns all trainable parameters in a stable order:
// fc1.weight, fc1.bias, fc2.weight, fc2.bias.
func (m *MLP[B]) Parameters() []*Parameter[B] {
	params := m.fc1.Parameters()
	return append(params, m.fc2.Parameters()...)
}

// StateDict returns the model parameters keyed by qualified name.
func (m *MLP[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return map[string]*tensor.Tensor[float32, B]{
		"fc1.weight": m.fc1.Weight().Tensor(),
		"fc1.bias":   m.fc1.Bias().Tensor(),
		"fc2.weight": m.fc2.Weight().Tensor(),
		"fc2.bias":   m.fc2.Bias().Tensor(),
	}
}

// LoadStateDict copies tensors from state into the model parameters.
// All four keys must be present with matching shapes.
func (m *MLP[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	targets := map[string]*Parameter[B]{
		"fc1.weight": m.fc1.Weight(),
		"fc1.bias":   m.fc1.Bias(),
		"fc2.weight": m.fc2.Weight(),
		"fc2.bias":   m.fc2.Bias(),
	}

	for name, param := range targets {
		src, ok := state[name]
		if !ok {
			return fmt.Errorf("nn: state dict missing key %q", name)
		}
		dst := param.Tensor()
		if !src.Shape().Equal(dst.Shape()) {
			return fmt.Errorf("nn: state dict key %q has shape %v, want %v",
				name, src.Shape(), dst.Shape())
		}
		copy(dst.Raw().Data(), src.Raw().Data())
	}

	return nil
}
