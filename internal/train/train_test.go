package train_test

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/train"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

type fixture struct {
	backend testBackend
	model   *nn.MLP[testBackend]
	sgd     *optim.SGD[testBackend]
	trainer *train.Trainer[testBackend]
	loader  *data.Loader[testBackend]
	eval    *data.Loader[testBackend]
}

func newFixture(t *testing.T, seed int64, size int, lr float64) *fixture {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	backend := autodiff.New(cpu.New())

	ds, err := data.GenerateXOR(size, 0.1, rng)
	require.NoError(t, err)
	trainSet, evalSet, err := ds.Split(0.8)
	require.NoError(t, err)

	loader, err := data.NewLoader(trainSet, data.LoaderConfig{BatchSize: 32, Shuffle: true}, backend, rng)
	require.NoError(t, err)
	evalLoader, err := data.NewLoader(evalSet, data.LoaderConfig{BatchSize: 32}, backend, rng)
	require.NoError(t, err)

	model := nn.NewMLP(2, 8, 1, backend, rng)
	sgd, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: lr})
	require.NoError(t, err)

	trainer, err := train.NewTrainer[testBackend](model, sgd, backend)
	require.NoError(t, err)

	return &fixture{
		backend: backend,
		model:   model,
		sgd:     sgd,
		trainer: trainer,
		loader:  loader,
		eval:    evalLoader,
	}
}

func TestNewTrainer_RequiresTape(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	model := nn.NewMLP(2, 4, 1, backend, rng)
	sgd, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
	require.NoError(t, err)

	_, err = train.NewTrainer[*cpu.CPUBackend](model, sgd, backend)
	assert.Error(t, err, "a bare CPU backend has no tape")
}

func TestTrainEpoch_Accounting(t *testing.T) {
	f := newFixture(t, 11, 100, 0.1)

	stats, err := f.trainer.TrainEpoch(f.loader, 1)
	require.NoError(t, err)

	// 80 train samples at batch 32: 3 batches of 32, 32, 16
	assert.Equal(t, 1, stats.Epoch)
	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, 80, stats.Samples)
	assert.Greater(t, stats.Loss, 0.0)
	assert.False(t, math.IsNaN(stats.Loss))
	assert.GreaterOrEqual(t, stats.Accuracy, 0.0)
	assert.LessOrEqual(t, stats.Accuracy, 1.0)
	assert.Equal(t, int64(3), f.trainer.Step())
}

func TestTrainEpoch_ClearsTape(t *testing.T) {
	f := newFixture(t, 12, 100, 0.1)

	_, err := f.trainer.TrainEpoch(f.loader, 1)
	require.NoError(t, err)

	tape := f.backend.Tape()
	assert.Equal(t, 0, tape.NumOperations(), "tape must be empty after an epoch")
	assert.False(t, tape.IsRecording(), "recording must be off after an epoch")
}

func TestTrainEpoch_LossDecreases(t *testing.T) {
	f := newFixture(t, 13, 400, 0.5)

	first, err := f.trainer.TrainEpoch(f.loader, 1)
	require.NoError(t, err)

	var last train.EpochStats
	for epoch := 2; epoch <= 30; epoch++ {
		last, err = f.trainer.TrainEpoch(f.loader, epoch)
		require.NoError(t, err)
	}

	assert.Less(t, last.Loss, first.Loss, "loss should decrease over training")
}

func TestTrainEpoch_NonFiniteLoss(t *testing.T) {
	f := newFixture(t, 14, 100, 0.1)

	// Poison a weight so the forward pass produces NaN
	f.model.StateDict()["fc1.weight"].Raw().AsFloat32()[0] = float32(math.NaN())

	_, err := f.trainer.TrainEpoch(f.loader, 1)
	assert.ErrorIs(t, err, train.ErrNonFiniteLoss)
}

func TestFit_History(t *testing.T) {
	f := newFixture(t, 15, 100, 0.1)

	var callbackEpochs []int
	history, err := f.trainer.Fit(f.loader, 5, func(stats train.EpochStats) error {
		callbackEpochs = append(callbackEpochs, stats.Epoch)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, history, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, callbackEpochs)
	for i, stats := range history {
		assert.Equal(t, i+1, stats.Epoch)
	}

	_, err = f.trainer.Fit(f.loader, 0, nil)
	assert.Error(t, err)
}

func TestEvaluate_DoesNotTouchState(t *testing.T) {
	f := newFixture(t, 16, 100, 0.1)

	before := append([]float32(nil), f.model.StateDict()["fc1.weight"].Data()...)

	f.backend.Tape().StartRecording()
	stats := train.Evaluate[testBackend](f.model, f.eval, f.backend)
	assert.True(t, f.backend.Tape().IsRecording(), "recording state must be restored")
	f.backend.Tape().StopRecording()
	f.backend.Tape().Clear()

	assert.Equal(t, 20, stats.Total)
	assert.Equal(t, before, f.model.StateDict()["fc1.weight"].Data(),
		"evaluation must not change parameters")

	for _, p := range f.model.Parameters() {
		assert.Nil(t, p.Grad(), "evaluation must not create gradients")
	}
}

func TestTraining_ConvergesOnXOR(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence test in short mode")
	}

	// A tiny tanh network solves noisy XOR almost always; allow a few
	// random restarts to rule out an unlucky init.
	best := 0.0
	for _, seed := range []int64{42, 43, 44} {
		f := newFixture(t, seed, 500, 0.5)

		_, err := f.trainer.Fit(f.loader, 150, nil)
		require.NoError(t, err)

		stats := train.Evaluate[testBackend](f.model, f.eval, f.backend)
		if stats.Accuracy > best {
			best = stats.Accuracy
		}
		if best >= 0.95 {
			break
		}
	}

	assert.GreaterOrEqual(t, best, 0.95, "held-out accuracy after training")
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	f := newFixture(t, 17, 200, 0.5)

	_, err := f.trainer.Fit(f.loader, 20, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ckpt.ember")
	require.NoError(t, train.SaveCheckpoint[testBackend](path, f.model, f.sgd, 20, f.trainer.Step(), 0.1))

	// Restore into a fresh model with a different init
	g := newFixture(t, 99, 200, 0.5)
	meta, err := train.LoadCheckpoint[testBackend](path, g.model, g.sgd, g.backend)
	require.NoError(t, err)
	assert.Equal(t, 20, meta.Epoch)
	assert.Equal(t, f.trainer.Step(), meta.Step)
	assert.Equal(t, "SGD", meta.OptimizerType)

	// Restored model behaves identically on held-out data
	orig := train.Evaluate[testBackend](f.model, f.eval, f.backend)
	restored := train.Evaluate[testBackend](g.model, f.eval, g.backend)
	assert.InDelta(t, orig.Loss, restored.Loss, 1e-6)
	assert.Equal(t, orig.Correct, restored.Correct)
}

func TestSaveLoadModel(t *testing.T) {
	f := newFixture(t, 18, 100, 0.1)

	path := filepath.Join(t.TempDir(), "model.ember")
	require.NoError(t, train.SaveModel[testBackend](path, f.model, "MLP"))

	g := newFixture(t, 77, 100, 0.1)
	require.NoError(t, train.LoadModel[testBackend](path, g.model, g.backend))

	orig := train.Evaluate[testBackend](f.model, f.eval, f.backend)
	loaded := train.Evaluate[testBackend](g.model, f.eval, g.backend)
	assert.InDelta(t, orig.Loss, loaded.Loss, 1e-6)
	assert.Equal(t, orig.Correct, loaded.Correct)

	// Loading a plain model as a checkpoint is rejected
	_, err := train.LoadCheckpoint[testBackend](path, g.model, nil, g.backend)
	assert.Error(t, err)
}
