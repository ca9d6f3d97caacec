package codec

import (
	"bufio"
	"bytes"
	"math/rand"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 129, 16383, 16384, 1 << 34, 1<<63 - 1}
	for _, x := range cases {
		buf := PutUvarint(nil, x)
		got, n, err := Uvarint(buf)
		if err != nil {
			t.Fatalf("Uvarint(%d): unexpected error %v", x, err)
		}
		if got != x {
			t.Errorf("Uvarint round trip: got %d, want %d", got, x)
		}
		if n != len(buf) {
			t.Errorf("Uvarint consumed %d bytes, want %d", n, len(buf))
		}
	}
}

func TestUvarintRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		x := uint64(rng.Int63())
		buf := PutUvarint(nil, x)
		got, _, err := Uvarint(buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != x {
			t.Fatalf("round trip mismatch: got %d want %d", got, x)
		}
	}
}

func TestZeroEncodesAsSingleByte(t *testing.T) {
	buf := PutUvarint(nil, 0)
	if len(buf) != 1 || buf[0] != 0x00 {
		t.Fatalf("zero should encode as a single 0x00 byte, got %v", buf)
	}
}

func TestUvarintTruncatedStream(t *testing.T) {
	buf := PutUvarint(nil, 300) // two bytes, high bit set on first
	_, _, err := Uvarint(buf[:1])
	if err != ErrTruncatedStream {
		t.Fatalf("expected ErrTruncatedStream, got %v", err)
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	xs := []int{5, 9, 20, 21, 21 + 1000}
	buf := EncodeDeltas(nil, xs)

	running := 0
	offset := 0
	var got []int
	for len(got) < len(xs) {
		v, newRunning, n, err := DecodeDelta(buf[offset:], running)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, v)
		running = newRunning
		offset += n
	}

	if len(got) != len(xs) {
		t.Fatalf("got %d values, want %d", len(got), len(xs))
	}
	for i := range xs {
		if got[i] != xs[i] {
			t.Errorf("value %d: got %d, want %d", i, got[i], xs[i])
		}
	}
}

func TestReadUvarint(t *testing.T) {
	var buf []byte
	want := []uint64{0, 1, 127, 128, 300, 1 << 40}
	for _, x := range want {
		buf = PutUvarint(buf, x)
	}
	br := bufio.NewReader(bytes.NewReader(buf))
	for _, x := range want {
		got, err := ReadUvarint(br)
		if err != nil {
			t.Fatalf("ReadUvarint: %v", err)
		}
		if got != x {
			t.Fatalf("got %d, want %d", got, x)
		}
	}
}

func TestReadUvarintTruncated(t *testing.T) {
	buf := PutUvarint(nil, 300)
	br := bufio.NewReader(bytes.NewReader(buf[:1]))
	if _, err := ReadUvarint(br); err != ErrTruncatedStream {
		t.Fatalf("got %v, want ErrTruncatedStream", err)
	}
}

func TestDeltaRoundTripSingleValue(t *testing.T) {
	buf := EncodeDeltas(nil, []int{42})
	v, _, _, err := DecodeDelta(buf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}
