package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// EntryCodec serializes entries for drivers whose backing store holds plain
// byte values instead of structured documents. Unmarshal failures wrap
// ErrCorruptEntry.
type EntryCodec interface {
	Marshal(e Entry) ([]byte, error)
	Unmarshal(data []byte) (Entry, error)
}

// Msgpack is the default EntryCodec. Compact, fast, and round-trips
// time.Time at nanosecond precision.
type Msgpack struct{}

var _ EntryCodec = Msgpack{}

func (Msgpack) Marshal(e Entry) ([]byte, error) {
	return msgpack.Marshal(e)
}

func (Msgpack) Unmarshal(data []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return e, nil
}

// CBOR is an EntryCodec backed by fxamacker/cbor, for deployments that want
// a standardized wire format. Times are encoded as RFC 3339 with nanoseconds
// so Expires survives the round trip exactly.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ EntryCodec = CBOR{}

func NewCBOR() (CBOR, error) {
	opts := cbor.PreferredUnsortedEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	enc, err := opts.EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: enc, dec: dec}, nil
}

// MustCBOR is NewCBOR that panics on error. The error paths are static
// (invalid mode options), so this is safe at package init.
func MustCBOR() CBOR {
	c, err := NewCBOR()
	if err != nil {
		panic(fmt.Sprintf("store: cbor init: %v", err))
	}
	return c
}

func (c CBOR) Marshal(e Entry) ([]byte, error) {
	return c.enc.Marshal(e)
}

func (c CBOR) Unmarshal(data []byte) (Entry, error) {
	var e Entry
	if err := c.dec.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return e, nil
}
