// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides the public API for synthetic datasets and batch
// loading.
package data

import (
	"math/rand"

	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/tensor"
)

// Errors.
var (
	ErrInvalidSize      = data.ErrInvalidSize
	ErrInvalidStd       = data.ErrInvalidStd
	ErrInvalidBatchSize = data.ErrInvalidBatchSize
)

// Dataset is a fixed set of 2D samples with binary labels.
type Dataset = data.Dataset

// GenerateXOR creates a noisy XOR dataset.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	ds, err := data.GenerateXOR(1000, 0.1, rng)
func GenerateXOR(size int, std float64, rng *rand.Rand) (*Dataset, error) {
	return data.GenerateXOR(size, std, rng)
}

// LoaderConfig controls batch iteration.
type LoaderConfig = data.LoaderConfig

// Batch is one mini-batch materialized as tensors.
type Batch[B tensor.Backend] = data.Batch[B]

// Loader iterates a Dataset in mini-batches.
type Loader[B tensor.Backend] = data.Loader[B]

// NewLoader creates a batch loader over the dataset.
func NewLoader[B tensor.Backend](dataset *Dataset, config LoaderConfig, backend B, rng *rand.Rand) (*Loader[B], error) {
	return data.NewLoader(dataset, config, backend, rng)
}
