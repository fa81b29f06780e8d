package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ember-ml/ember/internal/tensor"
)

// Reader reads models and checkpoints from .ember format.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	checksum   [32]byte
	dataOffset int64
	dataSize   int64
	closed     bool
}

// ReaderOptions configures Reader behavior.
type ReaderOptions struct {
	SkipChecksumValidation bool
}

// NewReader opens an .ember file and validates its header and checksum.
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{})
}

// NewReaderWithOptions opens an .ember file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file}
	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	r.dataSize = info.Size() - r.dataOffset

	if err := r.validateLayout(); err != nil {
		_ = file.Close()
		return nil, err
	}

	if !opts.SkipChecksumValidation {
		if err := r.validateChecksum(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	if err := binary.Read(r.file, binary.LittleEndian, &r.flags); err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	if _, err := io.ReadFull(r.file, r.checksum[:]); err != nil {
		return fmt.Errorf("failed to read checksum: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = int64(fixedPrefixSize) + int64(headerSize) + dataPadding(int64(headerSize))
	return nil
}

// validateLayout rejects headers whose tensor table does not fit the file.
func (r *Reader) validateLayout() error {
	seen := make(map[string]bool, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 {
			return fmt.Errorf("%w: tensor %q", ErrNegativeOffset, meta.Name)
		}
		if meta.Offset+meta.Size > r.dataSize {
			return fmt.Errorf("%w: tensor %q", ErrOutOfBounds, meta.Name)
		}
		if seen[meta.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateTensor, meta.Name)
		}
		seen[meta.Name] = true
	}
	return nil
}

func (r *Reader) validateChecksum() error {
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data section: %w", err)
	}
	data := make([]byte, r.dataSize)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return fmt.Errorf("failed to read data section: %w", err)
	}
	return ValidateChecksum(ComputeChecksum(data), r.checksum)
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return r.header
}

// CheckpointMeta returns checkpoint metadata, or nil for plain model files.
func (r *Reader) CheckpointMeta() *CheckpointMeta {
	return r.header.CheckpointMeta
}

// TensorNames returns the names of all tensors in file order, excluding
// optimizer state.
func (r *Reader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		if strings.HasPrefix(meta.Name, "optimizer.") {
			continue
		}
		names = append(names, meta.Name)
	}
	return names
}

// ReadTensor loads a single tensor by name.
func (r *Reader) ReadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	for _, meta := range r.header.Tensors {
		if meta.Name != name {
			continue
		}
		return r.readTensorAt(meta)
	}
	return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
}

// ReadStateDict loads all model tensors (optimizer state excluded).
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	state := make(map[string]*tensor.RawTensor)
	for _, meta := range r.header.Tensors {
		if strings.HasPrefix(meta.Name, "optimizer.") {
			continue
		}
		raw, err := r.readTensorAt(meta)
		if err != nil {
			return nil, err
		}
		state[meta.Name] = raw
	}
	return state, nil
}

// ReadOptimizerState loads optimizer tensors, keyed without the
// "optimizer." prefix. Returns an empty map for plain model files.
func (r *Reader) ReadOptimizerState() (map[string]*tensor.RawTensor, error) {
	state := make(map[string]*tensor.RawTensor)
	for _, meta := range r.header.Tensors {
		key, ok := strings.CutPrefix(meta.Name, "optimizer.")
		if !ok {
			continue
		}
		raw, err := r.readTensorAt(meta)
		if err != nil {
			return nil, err
		}
		state[key] = raw
	}
	return state, nil
}

func (r *Reader) readTensorAt(meta TensorMeta) (*tensor.RawTensor, error) {
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %q has unknown dtype %q", meta.Name, meta.DType)
	}

	shape := tensor.Shape(meta.Shape)
	raw, err := tensor.NewRaw(shape.Clone(), dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
	}
	if int64(raw.ByteSize()) != meta.Size {
		return nil, fmt.Errorf("tensor %q: shape %v implies %d bytes but header says %d",
			meta.Name, shape, raw.ByteSize(), meta.Size)
	}

	if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to tensor %q: %w", meta.Name, err)
	}
	if _, err := io.ReadFull(r.file, raw.Data()); err != nil {
		return nil, fmt.Errorf("failed to read tensor %q: %w", meta.Name, err)
	}
	return raw, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
