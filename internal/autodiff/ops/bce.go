package ops

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// BCEWithLogitsOp represents the fused binary cross-entropy-with-logits loss.
//
// Forward (per sample, numerically stable):
//
//	loss_i = max(z,0) - z*y + log(1 + exp(-|z|))
//
// where z is the logit and y the 0/1 target. The per-sample losses are
// averaged over the batch (mean reduction).
//
// Backward (closed form):
//
//	dL/dz_i = (σ(z_i) - y_i) / N
//
// Targets receive no gradient.
type BCEWithLogitsOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	output  *tensor.RawTensor // scalar mean loss, shape [1]
}

// NewBCEWithLogitsOp creates a new BCEWithLogitsOp.
func NewBCEWithLogitsOp(logits, targets, output *tensor.RawTensor) *BCEWithLogitsOp {
	return &BCEWithLogitsOp{
		logits:  logits,
		targets: targets,
		output:  output,
	}
}

// Inputs returns the input tensors [logits, targets].
func (op *BCEWithLogitsOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits, op.targets}
}

// Output returns the scalar loss tensor.
func (op *BCEWithLogitsOp) Output() *tensor.RawTensor {
	return op.output
}

// Backward computes the logit gradient (σ(z) - y) / N, scaled by the
// incoming output gradient. The targets input gets a nil gradient.
func (op *BCEWithLogitsOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	logits := op.logits.AsFloat32()
	targets := op.targets.AsFloat32()
	upstream := outputGrad.AsFloat32()[0]

	grad, err := tensor.NewRaw(op.logits.Shape(), op.logits.DType(), op.logits.Device())
	if err != nil {
		panic(fmt.Sprintf("bce backward: %v", err))
	}

	n := float32(len(logits))
	gradData := grad.AsFloat32()
	for i, z := range logits {
		sigma := float32(1.0 / (1.0 + math.Exp(float64(-z))))
		gradData[i] = (sigma - targets[i]) / n * upstream
	}

	return []*tensor.RawTensor{grad, nil}
}

// BCEWithLogitsForward computes the numerically stable mean BCE loss.
//
// Used by the autodiff backend's forward pass; exported so the loss module
// can share the exact same arithmetic in tests.
func BCEWithLogitsForward(logits, targets *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	if logits.NumElements() != targets.NumElements() {
		panic(fmt.Sprintf("bce: logits have %d elements, targets have %d",
			logits.NumElements(), targets.NumElements()))
	}
	if logits.DType() != tensor.Float32 || targets.DType() != tensor.Float32 {
		panic("bce: logits and targets must be float32")
	}

	z := logits.AsFloat32()
	y := targets.AsFloat32()

	var total float64
	for i := range z {
		zi := float64(z[i])
		yi := float64(y[i])
		total += math.Max(zi, 0) - zi*yi + math.Log1p(math.Exp(-math.Abs(zi)))
	}

	result, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, device)
	if err != nil {
		panic(fmt.Sprintf("bce: %v", err))
	}
	result.AsFloat32()[0] = float32(total / float64(len(z)))

	return result
}
