// Package train provides the training loop, evaluation and checkpointing
// for binary classifiers.
package train

import (
	"errors"
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

// ErrNonFiniteLoss is returned when a training step produces NaN or Inf loss.
// Training stops immediately; the model is left in its current state.
var ErrNonFiniteLoss = errors.New("train: loss is not finite")

// EpochStats summarizes one training epoch.
type EpochStats struct {
	Epoch    int     // 1-based epoch number
	Loss     float64 // Mean loss over all samples
	Accuracy float64 // Training accuracy over all samples
	Batches  int     // Batches processed
	Samples  int     // Samples processed
}

// Trainer runs mini-batch gradient descent over a model.
//
// The model's backend must carry a gradient tape (see autodiff.New); the
// trainer controls recording, backpropagation and parameter updates.
type Trainer[B tensor.Backend] struct {
	model     nn.Module[B]
	loss      *nn.BCEWithLogitsLoss[B]
	optimizer optim.Optimizer[B]
	backend   B
	step      int64
}

// NewTrainer creates a trainer. The backend must be the same autodiff-wrapped
// backend the model's tensors were created with.
func NewTrainer[B tensor.Backend](model nn.Module[B], optimizer optim.Optimizer[B], backend B) (*Trainer[B], error) {
	if _, ok := any(backend).(autodiff.TapeProvider); !ok {
		return nil, fmt.Errorf("train: backend %s does not carry a gradient tape", backend.Name())
	}

	return &Trainer[B]{
		model:     model,
		loss:      nn.NewBCEWithLogitsLoss[B](),
		optimizer: optimizer,
		backend:   backend,
	}, nil
}

// Step returns the number of optimizer steps taken so far.
func (t *Trainer[B]) Step() int64 {
	return t.step
}

// TrainEpoch runs one full pass over the loader.
//
// Per batch: clear gradients, forward, loss, backward, accumulate gradients
// into the parameters, optimizer step. The tape is cleared after every batch
// so the graph does not grow across batches.
//
// Returns ErrNonFiniteLoss (wrapped with batch context) if any batch produces
// NaN or Inf loss; the partial stats up to that batch are still returned.
func (t *Trainer[B]) TrainEpoch(loader *data.Loader[B], epoch int) (EpochStats, error) {
	tape := any(t.backend).(autodiff.TapeProvider).Tape()
	stats := EpochStats{Epoch: epoch}

	var lossSum float64
	var correct int

	loader.Reset()
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}

		t.optimizer.ZeroGrad()
		tape.Clear()
		tape.StartRecording()

		logits := t.model.Forward(batch.Features)
		loss := t.loss.Forward(logits, batch.Labels)

		tape.StopRecording()

		lossValue := float64(loss.Item())
		if math.IsNaN(lossValue) || math.IsInf(lossValue, 0) {
			tape.Clear()
			return stats, fmt.Errorf("%w: %g at epoch %d batch %d", ErrNonFiniteLoss, lossValue, epoch, stats.Batches)
		}

		grads, err := autodiff.Backward(loss)
		if err != nil {
			tape.Clear()
			return stats, err
		}

		for _, param := range t.model.Parameters() {
			if g, ok := grads[param.Tensor().Raw()]; ok {
				param.AccumulateGrad(g)
			}
		}

		if err := t.optimizer.Step(); err != nil {
			tape.Clear()
			return stats, err
		}
		tape.Clear()
		t.step++

		lossSum += lossValue * float64(batch.Size)
		correct += nn.CountCorrect(logits, batch.Labels)
		stats.Batches++
		stats.Samples += batch.Size
	}

	if stats.Samples > 0 {
		stats.Loss = lossSum / float64(stats.Samples)
		stats.Accuracy = float64(correct) / float64(stats.Samples)
	}
	return stats, nil
}

// Fit trains for the given number of epochs. The optional callback fires
// after each epoch; a non-nil callback error stops training early.
func (t *Trainer[B]) Fit(loader *data.Loader[B], epochs int, callback func(EpochStats) error) ([]EpochStats, error) {
	if epochs <= 0 {
		return nil, fmt.Errorf("train: epochs must be positive, got %d", epochs)
	}

	history := make([]EpochStats, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		stats, err := t.TrainEpoch(loader, epoch)
		if err != nil {
			return history, err
		}
		history = append(history, stats)

		if callback != nil {
			if err := callback(stats); err != nil {
				return history, err
			}
		}
	}
	return history, nil
}
