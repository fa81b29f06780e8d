package train

import (
	"fmt"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/serialization"
	"github.com/ember-ml/ember/internal/tensor"
)

// StatefulModel is a model whose parameters can be exported and restored
// by name.
type StatefulModel[B tensor.Backend] interface {
	nn.Module[B]
	StateDict() map[string]*tensor.Tensor[float32, B]
	LoadStateDict(map[string]*tensor.Tensor[float32, B]) error
}

// SaveModel writes the model parameters to an .ember file.
func SaveModel[B tensor.Backend](path string, model StatefulModel[B], modelType string) error {
	return serialization.NewWriter(path).WriteStateDict(rawStateDict(model), modelType, nil)
}

// LoadModel restores model parameters from an .ember file.
// The model must already have the right architecture; shapes are checked.
func LoadModel[B tensor.Backend](path string, model StatefulModel[B], backend B) error {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	return loadInto(reader, model, backend)
}

// SaveCheckpoint writes model parameters plus optimizer state and training
// progress.
func SaveCheckpoint[B tensor.Backend](path string, model StatefulModel[B], opt *optim.SGD[B], epoch int, step int64, loss float64) error {
	meta := serialization.CheckpointMeta{
		Epoch:         epoch,
		Step:          step,
		Loss:          loss,
		OptimizerType: "SGD",
		OptimizerConfig: map[string]any{
			"lr":       opt.LR(),
			"momentum": opt.Momentum(),
		},
	}
	return serialization.NewWriter(path).WriteCheckpoint(rawStateDict(model), opt.StateDict(), "MLP", meta)
}

// LoadCheckpoint restores model and optimizer state from a checkpoint and
// returns its training metadata.
func LoadCheckpoint[B tensor.Backend](path string, model StatefulModel[B], opt *optim.SGD[B], backend B) (*serialization.CheckpointMeta, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if err := loadInto(reader, model, backend); err != nil {
		return nil, err
	}

	if opt != nil {
		optimState, err := reader.ReadOptimizerState()
		if err != nil {
			return nil, err
		}
		if err := opt.LoadStateDict(optimState); err != nil {
			return nil, err
		}
	}

	meta := reader.CheckpointMeta()
	if meta == nil {
		return nil, fmt.Errorf("train: %s is not a checkpoint file", path)
	}
	return meta, nil
}

func rawStateDict[B tensor.Backend](model StatefulModel[B]) map[string]*tensor.RawTensor {
	state := model.StateDict()
	raw := make(map[string]*tensor.RawTensor, len(state))
	for name, t := range state {
		raw[name] = t.Raw()
	}
	return raw
}

func loadInto[B tensor.Backend](reader *serialization.Reader, model StatefulModel[B], backend B) error {
	rawState, err := reader.ReadStateDict()
	if err != nil {
		return err
	}

	state := make(map[string]*tensor.Tensor[float32, B], len(rawState))
	for name, raw := range rawState {
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("train: tensor %q has dtype %s, want float32", name, raw.DType())
		}
		state[name] = tensor.New[float32, B](raw, backend)
	}
	return model.LoadStateDict(state)
}
