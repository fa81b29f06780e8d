// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for neural network layers, models and
// loss functions.
package nn

import (
	"math/rand"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Module is the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// ZeroGrad clears the gradients of all parameters in a module.
func ZeroGrad[B tensor.Backend](m Module[B]) {
	nn.ZeroGrad(m)
}

// Layers

// Linear is a fully connected layer computing x @ W^T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier initialization.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	layer := nn.NewLinear(2, 8, backend, nil)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, rng *rand.Rand) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend, rng)
}

// MLP is a two-layer feed-forward network: Linear -> Tanh -> Linear.
type MLP[B tensor.Backend] = nn.MLP[B]

// NewMLP creates a two-layer network producing raw logits.
//
// Example:
//
//	model := nn.NewMLP(2, 8, 1, backend, rng)
func NewMLP[B tensor.Backend](inFeatures, hidden, outFeatures int, backend B, rng *rand.Rand) *MLP[B] {
	return nn.NewMLP(inFeatures, hidden, outFeatures, backend, rng)
}

// Activations

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Sigmoid is the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Losses and metrics

// BCEWithLogitsLoss computes binary cross-entropy on raw logits.
type BCEWithLogitsLoss[B tensor.Backend] = nn.BCEWithLogitsLoss[B]

// NewBCEWithLogitsLoss creates the loss module.
func NewBCEWithLogitsLoss[B tensor.Backend]() *BCEWithLogitsLoss[B] {
	return nn.NewBCEWithLogitsLoss[B]()
}

// BinaryAccuracy returns the fraction of correctly classified samples.
func BinaryAccuracy[B tensor.Backend](logits, targets *tensor.Tensor[float32, B]) float64 {
	return nn.BinaryAccuracy(logits, targets)
}
