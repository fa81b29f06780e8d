package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: pure Go reference implementation (internal/backend/cpu)
//   - Autodiff: decorator that wraps any backend and records a gradient
//     tape (internal/autodiff)
//
// The op surface is intentionally small: it covers exactly what a dense
// feed-forward network and its training loop exercise. Activations and
// fused losses are optional capabilities discovered via interface
// assertions (see internal/nn/activation.go).
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar any) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
