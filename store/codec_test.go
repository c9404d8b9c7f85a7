package store

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestEntryCodecs(t *testing.T) {
	codecs := []struct {
		name  string
		codec EntryCodec
	}{
		{"msgpack", Msgpack{}},
		{"cbor", MustCBOR()},
	}

	entry := Entry{
		CacheID:   "pages:home",
		Created:   time.Date(2024, 3, 9, 10, 30, 15, 123456789, time.UTC),
		Expires:   time.Date(2024, 3, 9, 11, 30, 15, 987654321, time.UTC),
		Unlimited: false,
		Tags:      []string{"boot", "layout"},
		Content:   []byte{0x78, 0x9c, 0x00, 0xff},
	}

	for _, tc := range codecs {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.codec.Marshal(entry)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := tc.codec.Unmarshal(raw)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			if got.CacheID != entry.CacheID || got.Unlimited != entry.Unlimited {
				t.Fatalf("scalar fields mismatch: %+v", got)
			}
			// expiry math depends on nanosecond fidelity
			if !got.Created.Equal(entry.Created) || !got.Expires.Equal(entry.Expires) {
				t.Fatalf("time fields mismatch: created=%v expires=%v", got.Created, got.Expires)
			}
			if len(got.Tags) != 2 || got.Tags[0] != "boot" || got.Tags[1] != "layout" {
				t.Fatalf("tags mismatch: %v", got.Tags)
			}
			if !bytes.Equal(got.Content, entry.Content) {
				t.Fatalf("content mismatch: %x", got.Content)
			}
		})
	}
}

func TestEntryCodecsRejectGarbage(t *testing.T) {
	codecs := []struct {
		name  string
		codec EntryCodec
	}{
		{"msgpack", Msgpack{}},
		{"cbor", MustCBOR()},
	}
	for _, tc := range codecs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.codec.Unmarshal([]byte("\x00\x01garbage"))
			if !errors.Is(err, ErrCorruptEntry) {
				t.Fatalf("expected ErrCorruptEntry, got %v", err)
			}
		})
	}
}

func TestUnlimitedFlagSurvivesEncoding(t *testing.T) {
	raw, err := Msgpack{}.Marshal(Entry{CacheID: "k", Unlimited: true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Msgpack{}.Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Unlimited {
		t.Fatalf("unlimited flag lost in round trip")
	}
}
