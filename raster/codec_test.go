package raster

import (
	"testing"
)

func TestRawCodecRoundTrip(t *testing.T) {
	v := testVolume()
	blob, err := RawCodec{}.Encode(v)
	if err != nil {
		t.Fatalf("error encoding: %v", err)
	}
	got, err := RawCodec{}.Decode(blob)
	if err != nil {
		t.Fatalf("error decoding: %v", err)
	}
	if !got.Equal(v) {
		t.Errorf("decoded raster differs from original")
	}
}

func TestRawCodecValidation(t *testing.T) {
	codec := RawCodec{}
	v := testVolume()
	blob, err := codec.Encode(v)
	if err != nil {
		t.Fatalf("error encoding: %v", err)
	}

	bad := append([]byte(nil), blob...)
	copy(bad, "XXXX")
	if _, err := codec.Decode(bad); err == nil {
		t.Errorf("expected error on bad magic")
	}

	if _, err := codec.Decode(blob[:len(blob)-8]); err == nil {
		t.Errorf("expected error on truncated labels")
	}

	if _, err := codec.Decode(blob[:10]); err == nil {
		t.Errorf("expected error on truncated header")
	}
}
