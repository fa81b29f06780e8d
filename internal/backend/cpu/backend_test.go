package cpu_test

import (
	"math"
	"testing"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

func newFloat32(t *testing.T, shape tensor.Shape, values []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), values)
	return raw
}

func TestCPUBackend_Name(t *testing.T) {
	backend := cpu.New()
	if backend.Name() != "CPU" {
		t.Errorf("Name() = %s, want CPU", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", backend.Device())
	}
}

func TestCPUBackend_Add(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	b := newFloat32(t, tensor.Shape{2, 2}, []float32{10, 20, 30, 40})

	result := backend.Add(a, b)
	want := []float32{11, 22, 33, 44}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("Add result[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestCPUBackend_AddBroadcast(t *testing.T) {
	backend := cpu.New()
	// [2, 3] + [1, 3] broadcasts the row vector over both rows
	a := newFloat32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := newFloat32(t, tensor.Shape{1, 3}, []float32{10, 20, 30})

	result := backend.Add(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("result shape = %v, want [2 3]", result.Shape())
	}
	want := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("broadcast Add result[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestCPUBackend_SubMulDiv(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{3}, []float32{6, 8, 10})
	b := newFloat32(t, tensor.Shape{3}, []float32{2, 4, 5})

	// Clone inputs so IsUnique does not trigger the inplace path between ops
	sub := backend.Sub(a.Clone(), b.Clone())
	mul := backend.Mul(a.Clone(), b.Clone())
	div := backend.Div(a.Clone(), b.Clone())

	wantSub := []float32{4, 4, 5}
	wantMul := []float32{12, 32, 50}
	wantDiv := []float32{3, 2, 2}
	for i := 0; i < 3; i++ {
		if sub.AsFloat32()[i] != wantSub[i] {
			t.Errorf("Sub[%d] = %g, want %g", i, sub.AsFloat32()[i], wantSub[i])
		}
		if mul.AsFloat32()[i] != wantMul[i] {
			t.Errorf("Mul[%d] = %g, want %g", i, mul.AsFloat32()[i], wantMul[i])
		}
		if div.AsFloat32()[i] != wantDiv[i] {
			t.Errorf("Div[%d] = %g, want %g", i, div.AsFloat32()[i], wantDiv[i])
		}
	}
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := cpu.New()
	// [2,3] @ [3,2] = [2,2]
	a := newFloat32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := newFloat32(t, tensor.Shape{3, 2}, []float32{7, 8, 9, 10, 11, 12})

	result := backend.MatMul(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("MatMul shape = %v, want [2 2]", result.Shape())
	}
	want := []float32{58, 64, 139, 154}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("MatMul result[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestCPUBackend_MatMulShapeMismatch(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{2, 3}, make([]float32, 6))
	b := newFloat32(t, tensor.Shape{2, 2}, make([]float32, 4))

	defer func() {
		if recover() == nil {
			t.Error("MatMul with mismatched inner dims should panic")
		}
	}()
	backend.MatMul(a, b)
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	result := backend.Transpose(a)
	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3 2]", result.Shape())
	}
	want := []float32{1, 4, 2, 5, 3, 6}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("Transpose result[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	result := backend.Reshape(a, tensor.Shape{3, 2})
	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Reshape shape = %v, want [3 2]", result.Shape())
	}
	// Row-major data order unchanged
	for i, v := range result.AsFloat32() {
		if v != float32(i+1) {
			t.Errorf("Reshape result[%d] = %g, want %d", i, v, i+1)
		}
	}
}

func TestCPUBackend_MulScalar(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{3}, []float32{1, 2, 3})

	result := backend.MulScalar(a, float32(2.5))
	want := []float32{2.5, 5, 7.5}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("MulScalar result[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestCPUBackend_Tanh(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{3}, []float32{-1, 0, 1})

	result := backend.Tanh(a)
	want := []float64{math.Tanh(-1), 0, math.Tanh(1)}
	for i, v := range result.AsFloat32() {
		if math.Abs(float64(v)-want[i]) > 1e-6 {
			t.Errorf("Tanh result[%d] = %g, want %g", i, v, want[i])
		}
	}
}

func TestCPUBackend_Sigmoid(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{3}, []float32{-100, 0, 100})

	result := backend.Sigmoid(a)
	got := result.AsFloat32()
	if math.Abs(float64(got[0])) > 1e-6 {
		t.Errorf("Sigmoid(-100) = %g, want ~0", got[0])
	}
	if math.Abs(float64(got[1])-0.5) > 1e-6 {
		t.Errorf("Sigmoid(0) = %g, want 0.5", got[1])
	}
	if math.Abs(float64(got[2])-1) > 1e-6 {
		t.Errorf("Sigmoid(100) = %g, want ~1", got[2])
	}
}

func TestCPUBackend_ReLU(t *testing.T) {
	backend := cpu.New()
	a := newFloat32(t, tensor.Shape{4}, []float32{-2, -0.5, 0, 3})

	result := backend.ReLU(a)
	want := []float32{0, 0, 0, 3}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("ReLU result[%d] = %g, want %g", i, v, want[i])
		}
	}
}
