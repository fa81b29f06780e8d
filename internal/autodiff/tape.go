package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// GradientTape records operations during the forward pass for backpropagation.
//
// The tape is not safe for concurrent use. Each training goroutine should own
// its backend (and therefore its tape).
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates a new gradient tape.
// Recording is disabled by default; call StartRecording to enable.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 32),
		recording:  false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
// Useful for evaluation passes where gradients are not needed.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns whether the tape is currently recording.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if recording is enabled.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear removes all recorded operations.
// Call between training iterations so the graph does not grow unbounded.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOperations returns the number of recorded operations.
func (t *GradientTape) NumOperations() int {
	return len(t.operations)
}

// Backward performs reverse-mode automatic differentiation.
//
// The walk starts from the last recorded operation, seeds its output with
// outputGrad, and propagates gradients backward through the tape, summing
// contributions when a tensor feeds multiple operations.
//
// Parameters:
//   - outputGrad: gradient of the loss with respect to the final output
//     (typically a ones tensor for a scalar loss)
//   - backend: backend used for the gradient arithmetic
//
// Returns a map from input tensors to their accumulated gradients.
func (t *GradientTape) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)

	if len(t.operations) == 0 {
		return grads
	}

	// Seed the gradient of the final output
	lastOp := t.operations[len(t.operations)-1]
	grads[lastOp.Output()] = outputGrad

	// Walk the tape in reverse
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]

		outGrad, ok := grads[op.Output()]
		if !ok {
			// Output not on any path to the loss
			continue
		}

		inputGrads := op.Backward(outGrad, backend)
		inputs := op.Inputs()

		for j, input := range inputs {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				// Non-differentiable input (e.g. targets of a loss)
				continue
			}

			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads
}
