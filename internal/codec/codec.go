// Package codec converts the item collection to and from its persisted form.
//
// Both formats share one wire record:
//
//	id, content, createdAt, kind, isDone (tasks only), dueDate (only when set)
//
// Times are RFC 3339 in UTC. Decoding checks each field explicitly so that
// legacy records (no kind) and partially written data are handled field by
// field rather than by struct reflection.
package codec

import (
	"fmt"
	"strings"

	"notes/internal/domain"
)

// Format names a serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat converts a user supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Codec encodes and decodes the whole item collection.
type Codec interface {
	Encode(items []domain.Item) ([]byte, error)
	Decode(data []byte) ([]domain.Item, error)
	Format() Format
}

// New returns the codec for format.
func New(format Format) (Codec, error) {
	switch format {
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML:
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// MustNew is New for formats known at compile time.
func MustNew(format Format) Codec {
	c, err := New(format)
	if err != nil {
		panic(err)
	}
	return c
}
