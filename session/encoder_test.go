package session

import (
	"errors"
	"testing"
)

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := Encode(testSession("sid-1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data[0] = sessionFormatVersionCurrent + 1
	if _, err := Decode(data); !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}
}

func TestDecodeRejectsTruncatedBlob(t *testing.T) {
	data, err := Encode(testSession("sid-1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, n := range []int{1, 3, 10, len(data) - 1} {
		if _, err := Decode(data[:n]); err == nil {
			t.Fatalf("expected error decoding %d of %d bytes", n, len(data))
		}
	}
}
