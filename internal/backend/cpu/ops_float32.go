package cpu

import "github.com/ember-ml/ember/internal/tensor"

// float32 kernels for element-wise arithmetic.

func addInplaceFloat32(a, b []float32) {
	for i := range a {
		a[i] += b[i]
	}
}

func addVectorizedFloat32(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func addBroadcastFloat32(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat32()
	av := a.AsFloat32()
	bv := b.AsFloat32()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] +
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}

func subInplaceFloat32(a, b []float32) {
	for i := range a {
		a[i] -= b[i]
	}
}

func subVectorizedFloat32(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func subBroadcastFloat32(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat32()
	av := a.AsFloat32()
	bv := b.AsFloat32()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] -
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}

func mulInplaceFloat32(a, b []float32) {
	for i := range a {
		a[i] *= b[i]
	}
}

func mulVectorizedFloat32(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

func mulBroadcastFloat32(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat32()
	av := a.AsFloat32()
	bv := b.AsFloat32()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] *
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}

func divInplaceFloat32(a, b []float32) {
	for i := range a {
		a[i] /= b[i]
	}
}

func divVectorizedFloat32(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] / b[i]
	}
}

func divBroadcastFloat32(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsFloat32()
	av := a.AsFloat32()
	bv := b.AsFloat32()
	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().ComputeStrides()
	bStrides := b.Shape().ComputeStrides()
	for i := range dst {
		dst[i] = av[srcIndex(i, outShape, a.Shape(), outStrides, aStrides)] /
			bv[srcIndex(i, outShape, b.Shape(), outStrides, bStrides)]
	}
}
