package autodiff

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// TapeProvider is implemented by backends that carry a gradient tape.
type TapeProvider interface {
	Tape() *GradientTape
}

// Backward computes gradients of a scalar loss with respect to all tensors
// recorded on the backend's tape.
//
// Seeds the backward walk with a ones tensor matching the loss shape, so the
// loss must be a scalar (or the caller accepts gradients of the elementwise
// sum).
func Backward[T tensor.DType, B tensor.Backend](loss *tensor.Tensor[T, B]) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	backend := any(loss.Backend()).(tensor.Backend)

	provider, ok := backend.(TapeProvider)
	if !ok {
		return nil, fmt.Errorf("autodiff: backend %s does not carry a gradient tape", backend.Name())
	}

	seed := onesRaw(loss.Raw().Shape(), loss.Raw().DType(), backend.Device())
	return provider.Tape().Backward(seed, backend), nil
}

func onesRaw(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape.Clone(), dtype, device)
	if err != nil {
		panic(err)
	}

	switch dtype {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	default:
		panic(fmt.Sprintf("autodiff: ones seed not supported for dtype %s", dtype))
	}

	return result
}
