package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() testBackend {
	return autodiff.New(cpu.New())
}

func fromSlice(t *testing.T, backend testBackend, data []float32, shape tensor.Shape) *tensor.Tensor[float32, testBackend] {
	t.Helper()
	ts, err := tensor.FromSlice[float32, testBackend](data, shape, backend)
	require.NoError(t, err)
	return ts
}

func TestLinear_Forward(t *testing.T) {
	backend := newBackend()
	layer := nn.NewLinear(2, 2, backend, rand.New(rand.NewSource(1)))

	// Overwrite the random init with known values
	copy(layer.Weight().Tensor().Raw().AsFloat32(), []float32{1, 2, 3, 4}) // [2,2], rows are output units
	copy(layer.Bias().Tensor().Raw().AsFloat32(), []float32{10, 20})

	x := fromSlice(t, backend, []float32{1, 1, 2, 0}, tensor.Shape{2, 2})
	out := layer.Forward(x)

	require.True(t, out.Shape().Equal(tensor.Shape{2, 2}))
	// Row 0: [1*1+2*1+10, 3*1+4*1+20] = [13, 27]
	// Row 1: [1*2+2*0+10, 3*2+4*0+20] = [12, 26]
	assert.InDeltaSlice(t, []float32{13, 27, 12, 26}, out.Data(), 1e-5)
}

func TestLinear_ShapePanics(t *testing.T) {
	backend := newBackend()
	layer := nn.NewLinear(2, 3, backend, rand.New(rand.NewSource(1)))

	x1d := fromSlice(t, backend, []float32{1, 2}, tensor.Shape{2})
	assert.Panics(t, func() { layer.Forward(x1d) }, "1D input should panic")

	xWrong := fromSlice(t, backend, []float32{1, 2, 3}, tensor.Shape{1, 3})
	assert.Panics(t, func() { layer.Forward(xWrong) }, "wrong feature count should panic")
}

func TestLinear_InitReproducible(t *testing.T) {
	backend := newBackend()
	a := nn.NewLinear(4, 8, backend, rand.New(rand.NewSource(7)))
	b := nn.NewLinear(4, 8, backend, rand.New(rand.NewSource(7)))

	assert.Equal(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data(),
		"same seed should give identical weights")

	c := nn.NewLinear(4, 8, backend, rand.New(rand.NewSource(8)))
	assert.NotEqual(t, a.Weight().Tensor().Data(), c.Weight().Tensor().Data(),
		"different seed should give different weights")
}

func TestParameter_AccumulateGrad(t *testing.T) {
	backend := newBackend()
	p := nn.NewParameter("w", tensor.Zeros[float32, testBackend](tensor.Shape{2}, backend))

	require.Nil(t, p.Grad())

	g1, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(g1.AsFloat32(), []float32{1, 2})

	g2, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(g2.AsFloat32(), []float32{10, 20})

	p.AccumulateGrad(g1)
	p.AccumulateGrad(g2)
	assert.InDeltaSlice(t, []float32{11, 22}, p.Grad().AsFloat32(), 1e-6,
		"gradients should sum across accumulation calls")

	// Accumulation owns its buffer: mutating g1 afterwards must not leak in
	g1.AsFloat32()[0] = 999
	assert.InDelta(t, 11, p.Grad().AsFloat32()[0], 1e-6)

	p.ZeroGrad()
	assert.Nil(t, p.Grad())

	p.AccumulateGrad(g2)
	assert.InDeltaSlice(t, []float32{10, 20}, p.Grad().AsFloat32(), 1e-6,
		"first accumulation after ZeroGrad should equal the gradient")
}

func TestParameter_AccumulateGradShapeMismatch(t *testing.T) {
	backend := newBackend()
	p := nn.NewParameter("w", tensor.Zeros[float32, testBackend](tensor.Shape{2}, backend))

	bad, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	assert.Panics(t, func() { p.AccumulateGrad(bad) })
}

func TestMLP_ForwardShape(t *testing.T) {
	backend := newBackend()
	model := nn.NewMLP(2, 8, 1, backend, rand.New(rand.NewSource(3)))

	x := fromSlice(t, backend, make([]float32, 10), tensor.Shape{5, 2})
	out := model.Forward(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{5, 1}))
}

func TestMLP_Parameters(t *testing.T) {
	backend := newBackend()
	model := nn.NewMLP(2, 4, 1, backend, rand.New(rand.NewSource(3)))

	params := model.Parameters()
	require.Len(t, params, 4)

	state := model.StateDict()
	require.Len(t, state, 4)
	assert.True(t, state["fc1.weight"].Shape().Equal(tensor.Shape{4, 2}))
	assert.True(t, state["fc1.bias"].Shape().Equal(tensor.Shape{4}))
	assert.True(t, state["fc2.weight"].Shape().Equal(tensor.Shape{1, 4}))
	assert.True(t, state["fc2.bias"].Shape().Equal(tensor.Shape{1}))
}

func TestMLP_StateDictRoundTrip(t *testing.T) {
	backend := newBackend()
	src := nn.NewMLP(2, 4, 1, backend, rand.New(rand.NewSource(5)))
	dst := nn.NewMLP(2, 4, 1, backend, rand.New(rand.NewSource(99)))

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := fromSlice(t, backend, []float32{0.3, -0.7, 1.1, 0.2}, tensor.Shape{2, 2})
	srcOut := src.Forward(x)
	dstOut := dst.Forward(x)
	assert.InDeltaSlice(t, srcOut.Data(), dstOut.Data(), 1e-6,
		"loaded model should produce identical outputs")
}

func TestMLP_LoadStateDictMissingKey(t *testing.T) {
	backend := newBackend()
	model := nn.NewMLP(2, 4, 1, backend, rand.New(rand.NewSource(5)))

	state := model.StateDict()
	delete(state, "fc2.bias")
	assert.Error(t, model.LoadStateDict(state))
}

func TestMLP_LoadStateDictShapeMismatch(t *testing.T) {
	backend := newBackend()
	model := nn.NewMLP(2, 4, 1, backend, rand.New(rand.NewSource(5)))
	other := nn.NewMLP(2, 8, 1, backend, rand.New(rand.NewSource(5)))

	assert.Error(t, model.LoadStateDict(other.StateDict()))
}

func TestBCEWithLogitsLoss_KnownValues(t *testing.T) {
	backend := newBackend()
	loss := nn.NewBCEWithLogitsLoss[testBackend]()

	logits := fromSlice(t, backend, []float32{0, 0}, tensor.Shape{2})
	targets := fromSlice(t, backend, []float32{0, 1}, tensor.Shape{2})

	// At logit 0 both classes cost -log(0.5) = ln 2
	out := loss.Forward(logits, targets)
	assert.InDelta(t, math.Log(2), float64(out.Item()), 1e-6)
}

func TestBCEWithLogitsLoss_NearPerfectPrediction(t *testing.T) {
	backend := newBackend()
	loss := nn.NewBCEWithLogitsLoss[testBackend]()

	logits := fromSlice(t, backend, []float32{20, -20}, tensor.Shape{2})
	targets := fromSlice(t, backend, []float32{1, 0}, tensor.Shape{2})

	out := float64(loss.Forward(logits, targets).Item())
	assert.GreaterOrEqual(t, out, 0.0, "loss is never negative")
	assert.Less(t, out, 1e-6, "confident correct predictions approach zero loss")
}

func TestBCEWithLogitsLoss_StableForExtremeLogits(t *testing.T) {
	backend := newBackend()
	loss := nn.NewBCEWithLogitsLoss[testBackend]()

	logits := fromSlice(t, backend, []float32{1000, -1000}, tensor.Shape{2})
	targets := fromSlice(t, backend, []float32{0, 1}, tensor.Shape{2})

	out := float64(loss.Forward(logits, targets).Item())
	assert.False(t, math.IsNaN(out) || math.IsInf(out, 0),
		"loss must stay finite for extreme logits")
	assert.InDelta(t, 1000, out, 1e-3, "fully wrong confident prediction costs |z|")
}

func TestBinaryAccuracy(t *testing.T) {
	backend := newBackend()

	logits := fromSlice(t, backend, []float32{2, -1, 0.5, -3}, tensor.Shape{4})
	targets := fromSlice(t, backend, []float32{1, 0, 0, 1}, tensor.Shape{4})

	// Predictions: 1, 0, 1, 0 -> first two correct
	assert.InDelta(t, 0.5, nn.BinaryAccuracy(logits, targets), 1e-9)
}

func TestBinaryAccuracy_ThresholdAtZeroLogit(t *testing.T) {
	backend := newBackend()

	// Logit exactly 0 means sigmoid 0.5, which predicts class 1
	logits := fromSlice(t, backend, []float32{0}, tensor.Shape{1})
	targets := fromSlice(t, backend, []float32{1}, tensor.Shape{1})
	assert.InDelta(t, 1.0, nn.BinaryAccuracy(logits, targets), 1e-9)
}

func TestZeroGrad_ClearsAllParameters(t *testing.T) {
	backend := newBackend()
	model := nn.NewMLP(2, 4, 1, backend, rand.New(rand.NewSource(5)))

	for _, p := range model.Parameters() {
		g, err := tensor.NewRaw(p.Tensor().Shape().Clone(), tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		p.AccumulateGrad(g)
		require.NotNil(t, p.Grad())
	}

	nn.ZeroGrad[testBackend](model)
	for _, p := range model.Parameters() {
		assert.Nil(t, p.Grad())
	}
}
