package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// BCEBackend is implemented by backends that support the fused
// binary cross-entropy-with-logits loss.
type BCEBackend interface {
	BCEWithLogits(logits, targets *tensor.RawTensor) *tensor.RawTensor
}

// BCEWithLogitsLoss computes binary cross-entropy on raw logits, fusing the
// sigmoid into the loss for numerical stability. The loss is averaged over
// the batch.
type BCEWithLogitsLoss[B tensor.Backend] struct{}

// NewBCEWithLogitsLoss creates the loss module.
func NewBCEWithLogitsLoss[B tensor.Backend]() *BCEWithLogitsLoss[B] {
	return &BCEWithLogitsLoss[B]{}
}

// Forward computes the mean loss over the batch. logits and targets must
// hold the same number of elements; targets are 0/1 labels.
// Returns a scalar tensor of shape [1].
func (l *BCEWithLogitsLoss[B]) Forward(logits, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend, ok := any(logits.Backend()).(BCEBackend)
	if !ok {
		panic(fmt.Sprintf("nn: backend %T does not support BCEWithLogits", logits.Backend()))
	}
	raw := backend.BCEWithLogits(logits.Raw(), targets.Raw())
	return tensor.New[float32, B](raw, logits.Backend())
}

// BinaryAccuracy returns the fraction of samples where the predicted class
// matches the target. A logit of at least zero (sigmoid of at least 0.5)
// predicts class 1.
func BinaryAccuracy[B tensor.Backend](logits, targets *tensor.Tensor[float32, B]) float64 {
	n := logits.NumElements()
	if n == 0 || n != targets.NumElements() {
		panic(fmt.Sprintf("nn: accuracy requires matching non-empty inputs, got %d logits and %d targets",
			n, targets.NumElements()))
	}
	return float64(CountCorrect(logits, targets)) / float64(n)
}

// CountCorrect returns the number of correctly classified samples, letting
// callers aggregate accuracy across batches of different sizes.
func CountCorrect[B tensor.Backend](logits, targets *tensor.Tensor[float32, B]) int {
	z := logits.Raw().AsFloat32()
	y := targets.Raw().AsFloat32()

	correct := 0
	for i := range z {
		predicted := float32(0)
		if z[i] >= 0 {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}
	}
	return correct
}
