package matlab

import (
	"encoding/binary"
)

// decodeConfig holds optional configuration for Decode/DecodeFile.
type decodeConfig struct {
	includeMetadata bool
}

// DecodeOption configures optional parameters for Decode and DecodeFile.
type DecodeOption func(*decodeConfig)

// WithMetadata requests that Decode add the reserved "__header__" and
// "__globals__" keys to the returned Record, mirroring mat4py's
// loadmat(..., meta=True).
//
// Default: metadata is omitted.
func WithMetadata() DecodeOption {
	return func(c *decodeConfig) {
		c.includeMetadata = true
	}
}

func defaultDecodeConfig() *decodeConfig {
	return &decodeConfig{}
}

func applyDecodeOptions(cfg *decodeConfig, opts []DecodeOption) {
	for _, opt := range opts {
		opt(cfg)
	}
}

// encodeConfig holds optional configuration for Encode/EncodeFile.
type encodeConfig struct {
	description string
	endianness  binary.ByteOrder
}

// EncodeOption configures optional parameters for Encode and EncodeFile.
type EncodeOption func(*encodeConfig)

// WithEndianness sets the byte order for the written file.
// Valid values: binary.LittleEndian, binary.BigEndian.
//
// Default: binary.LittleEndian.
//
// Example:
//
//	err := matlab.Encode(f, data, matlab.WithEndianness(binary.BigEndian))
func WithEndianness(order binary.ByteOrder) EncodeOption {
	return func(c *encodeConfig) {
		c.endianness = order
	}
}

// WithDescription sets the file description (max 116 bytes). Longer
// descriptions are truncated.
//
// Default: "MATLAB MAT-file, created by github.com/gomatlab/matfile"
//
// Example:
//
//	err := matlab.Encode(f, data, matlab.WithDescription("Simulation results"))
func WithDescription(desc string) EncodeOption {
	return func(c *encodeConfig) {
		if len(desc) > 116 {
			desc = desc[:116]
		}
		c.description = desc
	}
}

func defaultEncodeConfig() *encodeConfig {
	return &encodeConfig{
		description: "MATLAB MAT-file, created by github.com/gomatlab/matfile",
		endianness:  binary.LittleEndian,
	}
}

func applyEncodeOptions(cfg *encodeConfig, opts []EncodeOption) {
	for _, opt := range opts {
		opt(cfg)
	}
}
