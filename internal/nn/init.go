package nn

import (
	"math"
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// xavierUniform fills weights with samples from U(-limit, limit) where
// limit = sqrt(6 / (fanIn + fanOut)). Keeps activation variance roughly
// constant across layers, which matters for tanh networks.
func xavierUniform[B tensor.Backend](fanIn, fanOut int, backend B, rng *rand.Rand) *tensor.Tensor[float32, B] {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))

	data := make([]float32, fanOut*fanIn)
	for i := range data {
		data[i] = (rng.Float32()*2 - 1) * limit
	}

	t, err := tensor.FromSlice[float32, B](data, tensor.Shape{fanOut, fanIn}, backend)
	if err != nil {
		panic(err)
	}
	return t
}

func zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32, B](shape, backend)
}
