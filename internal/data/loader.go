package data

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ember-ml/ember/internal/tensor"
)

// ErrInvalidBatchSize is returned when a batch size is not positive.
var ErrInvalidBatchSize = errors.New("data: batch size must be positive")

// LoaderConfig controls batch iteration.
type LoaderConfig struct {
	BatchSize int  // Samples per batch, must be > 0
	Shuffle   bool // Reshuffle sample order on every Reset
	DropLast  bool // Discard a trailing batch smaller than BatchSize
}

// Batch is one mini-batch of samples materialized as tensors.
type Batch[B tensor.Backend] struct {
	Features *tensor.Tensor[float32, B] // Shape [n, 2]
	Labels   *tensor.Tensor[float32, B] // Shape [n]
	Size     int                        // n, at most BatchSize
}

// Loader iterates a Dataset in mini-batches. Batches are materialized
// lazily, one tensor pair per Next call.
//
// A Loader is not safe for concurrent use.
type Loader[B tensor.Backend] struct {
	dataset *Dataset
	config  LoaderConfig
	backend B
	rng     *rand.Rand

	order  []int // Current epoch's sample permutation
	cursor int
}

// NewLoader creates a batch loader over the dataset.
// If rng is nil, a time-seeded source is used. The loader starts positioned
// at the first batch; call Reset to start a new epoch.
func NewLoader[B tensor.Backend](dataset *Dataset, config LoaderConfig, backend B, rng *rand.Rand) (*Loader[B], error) {
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, config.BatchSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	l := &Loader[B]{
		dataset: dataset,
		config:  config,
		backend: backend,
		rng:     rng,
	}
	l.Reset()
	return l, nil
}

// Reset rewinds the loader to the start of the dataset.
// With Shuffle enabled, a fresh permutation is drawn from the loader's rng.
func (l *Loader[B]) Reset() {
	n := l.dataset.Len()
	if l.config.Shuffle {
		l.order = l.rng.Perm(n)
	} else {
		if l.order == nil {
			l.order = make([]int, n)
			for i := range l.order {
				l.order[i] = i
			}
		}
	}
	l.cursor = 0
}

// NumBatches returns the number of batches one full pass yields.
func (l *Loader[B]) NumBatches() int {
	n := l.dataset.Len()
	if l.config.DropLast {
		return n / l.config.BatchSize
	}
	return (n + l.config.BatchSize - 1) / l.config.BatchSize
}

// Next returns the next batch, or ok=false when the pass is exhausted.
// Every sample appears in exactly one batch per pass; the final batch may
// be smaller than BatchSize unless DropLast is set.
func (l *Loader[B]) Next() (Batch[B], bool) {
	n := l.dataset.Len()
	if l.cursor >= n {
		return Batch[B]{}, false
	}

	end := l.cursor + l.config.BatchSize
	if end > n {
		if l.config.DropLast {
			l.cursor = n
			return Batch[B]{}, false
		}
		end = n
	}

	size := end - l.cursor
	features := make([]float32, 2*size)
	labels := make([]float32, size)

	for i := 0; i < size; i++ {
		x, y := l.dataset.At(l.order[l.cursor+i])
		features[2*i] = x[0]
		features[2*i+1] = x[1]
		labels[i] = y
	}
	l.cursor = end

	ft, err := tensor.FromSlice[float32, B](features, tensor.Shape{size, 2}, l.backend)
	if err != nil {
		panic(err)
	}
	lt, err := tensor.FromSlice[float32, B](labels, tensor.Shape{size}, l.backend)
	if err != nil {
		panic(err)
	}

	return Batch[B]{Features: ft, Labels: lt, Size: size}, true
}
