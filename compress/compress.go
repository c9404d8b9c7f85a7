// Package compress provides the payload transform applied to cache content
// before storage. Compression is gated by a single level knob: 0 stores
// bytes verbatim, 1..9 run zlib at that level. The stored record does not
// say whether it was compressed, so the level must stay consistent across
// every process sharing a namespace.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Codec transforms payload bytes on the way into the store and back.
// Implementations must be lossless: Decompress(Compress(p)) == p for every
// input, the empty payload included.
type Codec interface {
	Compress(p []byte) ([]byte, error)
	Decompress(p []byte) ([]byte, error)
}

// ForLevel maps a compression level to its Codec: 0 is the identity
// transform, 1..9 select zlib. Anything else is a configuration error.
func ForLevel(level int) (Codec, error) {
	switch {
	case level == 0:
		return None{}, nil
	case level >= 1 && level <= 9:
		return Zlib{Level: level}, nil
	default:
		return nil, fmt.Errorf("compress: level %d out of range 0..9", level)
	}
}

// None passes payloads through untouched.
type None struct{}

var _ Codec = None{}

func (None) Compress(p []byte) ([]byte, error)   { return p, nil }
func (None) Decompress(p []byte) ([]byte, error) { return p, nil }

// Zlib deflates payloads at a fixed level between 1 and 9.
type Zlib struct {
	Level int
}

var _ Codec = Zlib{}

func (z Zlib) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, z.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(p); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (z Zlib) Decompress(p []byte) ([]byte, error) {
	// An empty stored payload predates compression or was written with it
	// off; inflating it would fail on a missing header.
	if len(p) == 0 {
		return p, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
