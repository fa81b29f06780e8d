package optim

import (
	"errors"
	"fmt"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// ErrInvalidLR is returned when the learning rate is not positive.
var ErrInvalidLR = errors.New("optim: learning rate must be positive")

// SGDConfig holds stochastic gradient descent hyperparameters.
type SGDConfig struct {
	LR       float64 // Learning rate, must be > 0
	Momentum float64 // Momentum factor, 0 disables momentum
}

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum: param -= lr * grad.
// With momentum:    v = momentum*v + grad; param -= lr * v.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	config     SGDConfig
	velocities []*tensor.RawTensor // nil slots until momentum is used
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) (*SGD[B], error) {
	if config.LR <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidLR, config.LR)
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		return nil, fmt.Errorf("optim: momentum must be in [0, 1), got %g", config.Momentum)
	}

	return &SGD[B]{
		params:     params,
		config:     config,
		velocities: make([]*tensor.RawTensor, len(params)),
	}, nil
}

// Step applies one SGD update to every parameter with an accumulated
// gradient. Updates run directly on the parameter buffers; nothing is
// recorded on any gradient tape.
func (s *SGD[B]) Step() error {
	lr := float32(s.config.LR)
	momentum := float32(s.config.Momentum)

	for i, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		data := param.Tensor().Raw().AsFloat32()
		g := grad.AsFloat32()
		if len(data) != len(g) {
			return fmt.Errorf("optim: parameter %q has %d elements but gradient has %d",
				param.Name(), len(data), len(g))
		}

		if momentum > 0 {
			v := s.velocity(i, grad)
			for j := range data {
				v[j] = momentum*v[j] + g[j]
				data[j] -= lr * v[j]
			}
		} else {
			for j := range data {
				data[j] -= lr * g[j]
			}
		}
	}

	return nil
}

// ZeroGrad clears the gradients of all managed parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the learning rate.
func (s *SGD[B]) LR() float64 {
	return s.config.LR
}

// Momentum returns the momentum factor.
func (s *SGD[B]) Momentum() float64 {
	return s.config.Momentum
}

func (s *SGD[B]) velocity(i int, grad *tensor.RawTensor) []float32 {
	if s.velocities[i] == nil {
		buf, err := tensor.NewRaw(grad.Shape().Clone(), grad.DType(), grad.Device())
		if err != nil {
			panic(err)
		}
		s.velocities[i] = buf
	}
	return s.velocities[i].AsFloat32()
}

// StateDict returns optimizer state for checkpointing: one velocity buffer
// per parameter. Keys combine the parameter's position and name so that
// same-named parameters from different layers stay distinct. Parameters
// whose velocity has not been allocated yet are omitted.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for i, param := range s.params {
		if s.velocities[i] != nil {
			state[velocityKey(i, param.Name())] = s.velocities[i]
		}
	}
	return state
}

// LoadStateDict restores velocity buffers saved by StateDict.
// Missing keys are ignored; shape mismatches are rejected.
func (s *SGD[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	for i, param := range s.params {
		saved, ok := state[velocityKey(i, param.Name())]
		if !ok {
			continue
		}
		if !saved.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("optim: velocity for %q has shape %v, want %v",
				param.Name(), saved.Shape(), param.Tensor().Shape())
		}
		s.velocities[i] = saved.Clone()
	}
	return nil
}

func velocityKey(i int, name string) string {
	return fmt.Sprintf("%d.%s", i, name)
}
