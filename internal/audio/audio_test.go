package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	pcmFromSamples := func(samples []int16) []byte {
		buf := make([]byte, len(samples)*2)
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
		}
		return buf
	}

	tests := []struct {
		name     string
		samples  []int16
		expected float64
	}{
		{
			name:     "empty",
			samples:  nil,
			expected: 0,
		},
		{
			name:     "silence",
			samples:  []int16{0, 0, 0, 0},
			expected: 0,
		},
		{
			name:     "constant amplitude",
			samples:  []int16{1000, 1000, 1000, 1000},
			expected: 1000,
		},
		{
			name:     "alternating sign",
			samples:  []int16{500, -500, 500, -500},
			expected: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMS(pcmFromSamples(tt.samples))
			if math.Abs(got-tt.expected) > 0.5 {
				t.Errorf("expected %.1f, got %.1f", tt.expected, got)
			}
		})
	}
}

func TestRMSOddTrailingByte(t *testing.T) {
	// A trailing half-sample should be ignored, not read out of bounds.
	pcm := []byte{0xE8, 0x03, 0xFF}
	got := RMS(pcm)
	if math.Abs(got-1000) > 0.5 {
		t.Errorf("expected 1000, got %.1f", got)
	}
}

func TestFrameReader(t *testing.T) {
	var buf bytes.Buffer
	frames := [][]byte{
		{0x01, 0x02, 0x03},
		{0xAA},
		{0x10, 0x20, 0x30, 0x40, 0x50},
	}
	for _, frame := range frames {
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(frame)))
		buf.Write(lenBuf[:])
		buf.Write(frame)
	}

	reader := NewFrameReader(&buf)
	for i, expected := range frames {
		frame, err := reader.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if !bytes.Equal(frame, expected) {
			t.Errorf("frame %d: expected %v, got %v", i, expected, frame)
		}
	}

	if _, err := reader.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestFrameReaderTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], 10)
	buf.Write(lenBuf[:])
	buf.Write([]byte{0x01, 0x02})

	reader := NewFrameReader(&buf)
	if _, err := reader.ReadFrame(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}
