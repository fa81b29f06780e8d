// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for gradient-based optimizers.
package optim

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

// ErrInvalidLR is returned when a learning rate is not positive.
var ErrInvalidLR = optim.ErrInvalidLR

// Optimizer updates model parameters from their accumulated gradients.
type Optimizer[B tensor.Backend] = optim.Optimizer[B]

// SGDConfig holds stochastic gradient descent hyperparameters.
type SGDConfig = optim.SGDConfig

// SGD implements stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// NewSGD creates an SGD optimizer over the given parameters.
//
// Example:
//
//	opt, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) (*SGD[B], error) {
	return optim.NewSGD(params, config)
}
