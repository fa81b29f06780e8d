package data_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/data"
	"github.com/ember-ml/ember/internal/tensor"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func TestGenerateXOR_InvalidArgs(t *testing.T) {
	_, err := data.GenerateXOR(0, 0.1, nil)
	assert.ErrorIs(t, err, data.ErrInvalidSize)

	_, err = data.GenerateXOR(-5, 0.1, nil)
	assert.ErrorIs(t, err, data.ErrInvalidSize)

	_, err = data.GenerateXOR(10, -0.01, nil)
	assert.ErrorIs(t, err, data.ErrInvalidStd)
}

func TestGenerateXOR_LabelsMatchCleanBits(t *testing.T) {
	// With zero noise the features are exactly the bits, so the XOR
	// invariant is directly checkable.
	ds, err := data.GenerateXOR(500, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, 500, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		x, y := ds.At(i)
		a := int(x[0])
		b := int(x[1])
		want := float32(0)
		if a != b {
			want = 1
		}
		require.Equal(t, want, y, "sample %d: bits (%d,%d)", i, a, b)
	}
}

func TestGenerateXOR_NoiseStaysNearBits(t *testing.T) {
	ds, err := data.GenerateXOR(1000, 0.05, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	// With std 0.05 essentially every feature is within 0.5 of its bit,
	// so rounding recovers the bit and the label invariant holds.
	for i := 0; i < ds.Len(); i++ {
		x, y := ds.At(i)
		a := int(math.Round(float64(x[0])))
		b := int(math.Round(float64(x[1])))
		require.Contains(t, []int{0, 1}, a)
		require.Contains(t, []int{0, 1}, b)
		want := float32(0)
		if a != b {
			want = 1
		}
		require.Equal(t, want, y, "sample %d", i)
	}
}

func TestGenerateXOR_Reproducible(t *testing.T) {
	a, err := data.GenerateXOR(100, 0.1, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := data.GenerateXOR(100, 0.1, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	for i := 0; i < a.Len(); i++ {
		xa, ya := a.At(i)
		xb, yb := b.At(i)
		require.Equal(t, xa, xb, "sample %d features", i)
		require.Equal(t, ya, yb, "sample %d label", i)
	}
}

func TestDataset_AtOutOfRange(t *testing.T) {
	ds, err := data.GenerateXOR(10, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Panics(t, func() { ds.At(-1) })
	assert.Panics(t, func() { ds.At(10) })
}

func TestDataset_Split(t *testing.T) {
	ds, err := data.GenerateXOR(100, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	train, eval, err := ds.Split(0.8)
	require.NoError(t, err)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, eval.Len())

	// Partitions preserve sample order
	xTrain, _ := train.At(0)
	xOrig, _ := ds.At(0)
	assert.Equal(t, xOrig, xTrain)

	xEval, _ := eval.At(0)
	xOrig80, _ := ds.At(80)
	assert.Equal(t, xOrig80, xEval)

	_, _, err = ds.Split(0)
	assert.Error(t, err)
	_, _, err = ds.Split(1)
	assert.Error(t, err)
}

func TestNewLoader_InvalidBatchSize(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ds, err := data.GenerateXOR(10, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = data.NewLoader(ds, data.LoaderConfig{BatchSize: 0}, backend, nil)
	assert.True(t, errors.Is(err, data.ErrInvalidBatchSize))
}

func TestLoader_BatchShapes(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ds, err := data.GenerateXOR(10, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 4}, backend, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, loader.NumBatches())

	// 10 samples at batch 4: sizes 4, 4, 2
	var sizes []int
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}
		sizes = append(sizes, batch.Size)
		require.True(t, batch.Features.Shape().Equal(tensor.Shape{batch.Size, 2}),
			"features shape %v", batch.Features.Shape())
		require.True(t, batch.Labels.Shape().Equal(tensor.Shape{batch.Size}),
			"labels shape %v", batch.Labels.Shape())
	}
	assert.Equal(t, []int{4, 4, 2}, sizes)
}

func TestLoader_DropLast(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ds, err := data.GenerateXOR(10, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 4, DropLast: true}, backend, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.NumBatches())

	count := 0
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}
		assert.Equal(t, 4, batch.Size)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestLoader_CoversEverySampleOnce(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ds, err := data.GenerateXOR(20, 0.1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 6, Shuffle: true},
		backend, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	seen := make(map[[2]float32]int)
	total := 0
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}
		features := batch.Features.Data()
		for i := 0; i < batch.Size; i++ {
			seen[[2]float32{features[2*i], features[2*i+1]}]++
			total++
		}
	}

	assert.Equal(t, 20, total)
	// Noisy features are almost surely distinct, so each key appears once
	assert.Len(t, seen, 20)
	for k, n := range seen {
		assert.Equal(t, 1, n, "sample %v appeared %d times", k, n)
	}
}

func TestLoader_ShuffleChangesOrderAcrossEpochs(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ds, err := data.GenerateXOR(64, 0.1, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 64, Shuffle: true},
		backend, rand.New(rand.NewSource(6)))
	require.NoError(t, err)

	first, ok := loader.Next()
	require.True(t, ok)
	epoch1 := append([]float32(nil), first.Features.Data()...)

	loader.Reset()
	second, ok := loader.Next()
	require.True(t, ok)
	epoch2 := append([]float32(nil), second.Features.Data()...)

	assert.NotEqual(t, epoch1, epoch2, "reshuffle should change sample order")
}

func TestLoader_ReproducibleWithSeed(t *testing.T) {
	backend := autodiff.New(cpu.New())
	ds, err := data.GenerateXOR(32, 0.1, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	makeOrder := func(seed int64) []float32 {
		loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 32, Shuffle: true},
			backend, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		batch, ok := loader.Next()
		require.True(t, ok)
		return append([]float32(nil), batch.Features.Data()...)
	}

	assert.Equal(t, makeOrder(9), makeOrder(9), "same seed gives the same order")
}
