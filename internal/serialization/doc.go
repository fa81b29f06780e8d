// Package serialization implements the .ember binary format for model
// parameters and training checkpoints.
//
// File layout:
//
//	0x00  magic "EMBR" (4 bytes)
//	0x04  format version (uint32, little-endian)
//	0x08  flags (uint32, little-endian)
//	0x0C  SHA-256 checksum of the data section (32 bytes)
//	0x2C  header size (uint64, little-endian)
//	0x34  header JSON
//	....  zero padding to a 64-byte boundary
//	....  tensor data, raw little-endian buffers back to back
//
// The JSON header lists every tensor's name, dtype, shape, byte offset and
// size within the data section, plus optional checkpoint metadata (epoch,
// step, loss, optimizer state).
package serialization
