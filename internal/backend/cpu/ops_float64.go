package cpu

import "github.com/ember-ml/ember/internal/tensor"

// float64 kernels for element-wise arithmetic.

func addInplaceFloat64(a, b []float64) {
	for i := range a {
		a[i] += b[i]
	}
}

func addVectorizedFloat64(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func addBroadcastFloat64(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat64()
	av := a.AsFloat64()
	bv := b.AsFloat64()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] +
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}

func subInplaceFloat64(a, b []float64) {
	for i := range a {
		a[i] -= b[i]
	}
}

func subVectorizedFloat64(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func subBroadcastFloat64(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat64()
	av := a.AsFloat64()
	bv := b.AsFloat64()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] -
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}

func mulInplaceFloat64(a, b []float64) {
	for i := range a {
		a[i] *= b[i]
	}
}

func mulVectorizedFloat64(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

func mulBroadcastFloat64(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat64()
	av := a.AsFloat64()
	bv := b.AsFloat64()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] *
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}

func divInplaceFloat64(a, b []float64) {
	for i := range a {
		a[i] /= b[i]
	}
}

func divVectorizedFloat64(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] / b[i]
	}
}

func divBroadcastFloat64(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat64()
	av := a.AsFloat64()
	bv := b.AsFloat64()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] /
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}
