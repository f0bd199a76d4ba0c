package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
)

const (
	// SampleRate and Channels match Discord's voice format.
	SampleRate = 48000
	Channels   = 2
)

// RMS computes the root mean square loudness of 16-bit little-endian PCM.
func RMS(pcm []byte) float64 {
	count := len(pcm) / 2
	if count == 0 {
		return 0
	}

	var sumSquares float64
	for i := 0; i < count*2; i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i : i+2]))
		sumSquares += float64(sample) * float64(sample)
	}
	return math.Sqrt(sumSquares / float64(count))
}

// PCMToFLAC converts raw 48kHz stereo s16le PCM to FLAC via FFmpeg.
// The speech recognition endpoint accepts FLAC, which also keeps the
// payload small.
func PCMToFLAC(ctx context.Context, pcm []byte) ([]byte, error) {
	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-f", "s16le",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"-i", "pipe:0",
		"-f", "flac",
		"-ac", "1",
		"pipe:1",
	)

	ffmpeg.Stdin = bytes.NewReader(pcm)

	var out bytes.Buffer
	ffmpeg.Stdout = &out

	if err := ffmpeg.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg flac conversion failed: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeToPCM runs FFmpeg over any readable audio and returns a reader of
// 48kHz stereo s16le PCM. The caller must drain and close the reader.
func DecodeToPCM(ctx context.Context, r io.Reader) (io.ReadCloser, error) {
	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"pipe:1",
	)

	ffmpeg.Stdin = r

	stdout, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to pipe ffmpeg output: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, fmt.Errorf("unable to start ffmpeg: %w", err)
	}

	return &encodeCloser{ReadCloser: stdout, cmd: ffmpeg}, nil
}
