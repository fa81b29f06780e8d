package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ember-ml/ember/internal/tensor"
)

const emberVersion = "0.1.0"

// Writer writes models and checkpoints in .ember format.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting the given path.
// The file is created (or truncated) when a state dict is written.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// WriteStateDict writes the given tensors as a plain model file.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		EmberVersion:  emberVersion,
		ModelType:     modelType,
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
	}
	return w.write(stateDict, header)
}

// WriteCheckpoint writes model tensors plus training state. Optimizer
// tensors are stored alongside the model tensors under an "optimizer."
// name prefix.
func (w *Writer) WriteCheckpoint(stateDict map[string]*tensor.RawTensor, optimState map[string]*tensor.RawTensor, modelType string, meta CheckpointMeta) error {
	combined := make(map[string]*tensor.RawTensor, len(stateDict)+len(optimState))
	for name, raw := range stateDict {
		combined[name] = raw
	}
	for name, raw := range optimState {
		combined["optimizer."+name] = raw
	}

	header := Header{
		FormatVersion:  FormatVersion,
		EmberVersion:   emberVersion,
		ModelType:      modelType,
		CreatedAt:      time.Now().UTC(),
		CheckpointMeta: &meta,
	}
	return w.write(combined, header)
}

func (w *Writer) write(stateDict map[string]*tensor.RawTensor, header Header) error {
	// Deterministic tensor order so identical state produces identical files
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	var offset int64
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil {
		flags |= FlagHasOptimizer
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	// Checksum covers the data section only
	data := make([]byte, 0, offset)
	for _, name := range names {
		data = append(data, stateDict[name].Data()...)
	}
	checksum := ComputeChecksum(data)

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}
	if _, err := file.Write(checksum[:]); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if padding := dataPadding(int64(len(headerJSON))); padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return file.Sync()
}
