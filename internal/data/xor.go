// Package data provides synthetic dataset generation and batch loading.
package data

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	// ErrInvalidSize is returned when a dataset size is not positive.
	ErrInvalidSize = errors.New("data: dataset size must be positive")

	// ErrInvalidStd is returned when a noise standard deviation is negative.
	ErrInvalidStd = errors.New("data: noise std must be non-negative")
)

// Dataset holds a fixed set of 2D samples with binary labels.
// Features are stored row-major, two values per sample.
// The dataset is immutable after generation.
type Dataset struct {
	features []float32 // len = 2 * size
	labels   []float32 // len = size, values 0 or 1
	size     int
}

// GenerateXOR creates a noisy XOR dataset of the given size.
//
// Each sample draws two Bernoulli(0.5) bits a and b; the label is a XOR b.
// The features are the bits with additive Gaussian noise of the given
// standard deviation. The label is computed from the clean bits, so noise
// never flips a label.
//
// If rng is nil, a time-seeded source is used.
func GenerateXOR(size int, std float64, rng *rand.Rand) (*Dataset, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if std < 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidStd, std)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	features := make([]float32, 2*size)
	labels := make([]float32, size)

	for i := 0; i < size; i++ {
		a := rng.Intn(2)
		b := rng.Intn(2)

		features[2*i] = float32(a) + float32(rng.NormFloat64()*std)
		features[2*i+1] = float32(b) + float32(rng.NormFloat64()*std)

		if a != b {
			labels[i] = 1
		}
	}

	return &Dataset{features: features, labels: labels, size: size}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return d.size
}

// At returns the i-th sample's features and label.
// Panics if i is out of range.
func (d *Dataset) At(i int) (x [2]float32, y float32) {
	if i < 0 || i >= d.size {
		panic(fmt.Sprintf("data: sample index %d out of range [0, %d)", i, d.size))
	}
	return [2]float32{d.features[2*i], d.features[2*i+1]}, d.labels[i]
}

// Split partitions the dataset into a training prefix and evaluation suffix.
// frac is the training fraction in (0, 1). Sample order is preserved; shuffle
// happens at the loader, not here.
func (d *Dataset) Split(frac float64) (train, eval *Dataset, err error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, fmt.Errorf("data: split fraction must be in (0, 1), got %g", frac)
	}

	n := int(float64(d.size) * frac)
	if n == 0 || n == d.size {
		return nil, nil, fmt.Errorf("data: split fraction %g leaves an empty partition for %d samples", frac, d.size)
	}

	train = &Dataset{
		features: d.features[:2*n],
		labels:   d.labels[:n],
		size:     n,
	}
	eval = &Dataset{
		features: d.features[2*n:],
		labels:   d.labels[n:],
		size:     d.size - n,
	}
	return train, eval, nil
}
