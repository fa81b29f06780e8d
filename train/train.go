// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the public API for training, evaluation and
// checkpointing.
package train

import (
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/serialization"
	"github.com/ember-ml/ember/internal/tensor"
	"github.com/ember-ml/ember/internal/train"
)

// ErrNonFiniteLoss is returned when training produces NaN or Inf loss.
var ErrNonFiniteLoss = train.ErrNonFiniteLoss

// EpochStats summarizes one training epoch.
type EpochStats = train.EpochStats

// EvalStats summarizes an evaluation pass.
type EvalStats = train.EvalStats

// Trainer runs mini-batch gradient descent over a model.
type Trainer[B tensor.Backend] = train.Trainer[B]

// NewTrainer creates a trainer. The backend must carry a gradient tape.
func NewTrainer[B tensor.Backend](model nn.Module[B], optimizer optim.Optimizer[B], backend B) (*Trainer[B], error) {
	return train.NewTrainer(model, optimizer, backend)
}

// Evaluate runs the model over one full pass of the loader without touching
// gradients or parameters.
func Evaluate[B tensor.Backend](model nn.Module[B], loader *data.Loader[B], backend B) EvalStats {
	return train.Evaluate(model, loader, backend)
}

// StatefulModel is a model whose parameters can be exported and restored.
type StatefulModel[B tensor.Backend] = train.StatefulModel[B]

// CheckpointMeta carries training state stored in a checkpoint file.
type CheckpointMeta = serialization.CheckpointMeta

// SaveModel writes model parameters to an .ember file.
func SaveModel[B tensor.Backend](path string, model StatefulModel[B], modelType string) error {
	return train.SaveModel(path, model, modelType)
}

// LoadModel restores model parameters from an .ember file.
func LoadModel[B tensor.Backend](path string, model StatefulModel[B], backend B) error {
	return train.LoadModel(path, model, backend)
}

// SaveCheckpoint writes model parameters plus optimizer state and training
// progress.
func SaveCheckpoint[B tensor.Backend](path string, model StatefulModel[B], opt *optim.SGD[B], epoch int, step int64, loss float64) error {
	return train.SaveCheckpoint(path, model, opt, epoch, step, loss)
}

// LoadCheckpoint restores model and optimizer state from a checkpoint.
func LoadCheckpoint[B tensor.Backend](path string, model StatefulModel[B], opt *optim.SGD[B], backend B) (*CheckpointMeta, error) {
	return train.LoadCheckpoint(path, model, opt, backend)
}
