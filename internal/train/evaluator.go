package train

import (
	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// EvalStats summarizes an evaluation pass.
type EvalStats struct {
	Loss     float64 // Mean loss over all samples
	Accuracy float64 // Fraction of correctly classified samples
	Correct  int
	Total    int
}

// Evaluate runs the model over one full pass of the loader without touching
// gradients or parameters. A logit of at least zero predicts class 1.
//
// If the backend carries a gradient tape, recording is suspended for the
// duration and restored afterwards.
func Evaluate[B tensor.Backend](model nn.Module[B], loader *data.Loader[B], backend B) EvalStats {
	if provider, ok := any(backend).(autodiff.TapeProvider); ok {
		tape := provider.Tape()
		if tape.IsRecording() {
			tape.StopRecording()
			defer tape.StartRecording()
		}
	}

	loss := nn.NewBCEWithLogitsLoss[B]()
	stats := EvalStats{}
	var lossSum float64

	loader.Reset()
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}

		logits := model.Forward(batch.Features)
		batchLoss := loss.Forward(logits, batch.Labels)

		lossSum += float64(batchLoss.Item()) * float64(batch.Size)
		stats.Correct += nn.CountCorrect(logits, batch.Labels)
		stats.Total += batch.Size
	}

	if stats.Total > 0 {
		stats.Loss = lossSum / float64(stats.Total)
		stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
	}
	return stats
}
