// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the public API for automatic differentiation.
//
// Wrap any backend to record operations and compute gradients:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := model.Forward(x) // ... build the graph
//	grads, err := autodiff.Backward(loss)
package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/tensor"
)

// AutodiffBackend wraps a backend and records operations for backpropagation.
type AutodiffBackend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// GradientTape records operations during the forward pass.
type GradientTape = autodiff.GradientTape

// TapeProvider is implemented by backends that carry a gradient tape.
type TapeProvider = autodiff.TapeProvider

// New wraps the given backend with gradient tracking.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return autodiff.New(backend)
}

// Backward computes gradients of a scalar loss with respect to all tensors
// recorded on the loss's backend tape.
func Backward[T tensor.DType, B tensor.Backend](loss *tensor.Tensor[T, B]) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(loss)
}
