package cpu

import "github.com/ember-ml/ember/internal/tensor"

// srcIndex maps a flat output index to the flat index into an input tensor
// of shape inShape that was broadcast to outShape.
//
// Broadcasting aligns shapes from the right; dimensions of size 1 in the
// input repeat along the corresponding output dimension.
func srcIndex(outIdx int, outShape, inShape tensor.Shape, outStrides, inStrides []int) int {
	offset := len(outShape) - len(inShape)
	idx := 0
	rem := outIdx
	for d := 0; d < len(outShape); d++ {
		coord := rem / outStrides[d]
		rem %= outStrides[d]

		in := d - offset
		if in >= 0 && inShape[in] != 1 {
			idx += coord * inStrides[in]
		}
	}
	return idx
}
