package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/bwmarrin/discordgo"
	"github.com/jogramming/dca"
)

// EncodeURLOnTheFly starts ffmpeg pulling from a URL and wraps the raw
// PCM in a dca encode session ready for streaming.
func EncodeURLOnTheFly(ctx context.Context, audioURL string) (*dca.EncodeSession, error) {
	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-i", audioURL,
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"pipe:1",
	)

	ffmpegStdout, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to pipe output of ffmpeg to stdout: %w", err)
	}

	ffmpeg.Stderr = nil

	if err := ffmpeg.Start(); err != nil {
		return nil, fmt.Errorf("unable to start ffmpeg process: %w", err)
	}

	options := dca.StdEncodeOptions
	options.RawOutput = true
	options.Bitrate = 96
	options.Application = "audio"
	options.Volume = 256

	encodeSession, err := dca.EncodeMem(ffmpegStdout, options)
	if err != nil {
		return nil, fmt.Errorf("unable to encode dca from memory: %w", err)
	}

	return encodeSession, nil
}

// PlayURL streams the audio at a URL into a voice connection and blocks
// until playback finishes.
func PlayURL(ctx context.Context, vc *discordgo.VoiceConnection, audioURL string) error {
	session, err := EncodeURLOnTheFly(ctx, audioURL)
	if err != nil {
		return err
	}
	defer session.Cleanup()

	if err := vc.Speaking(true); err != nil {
		return fmt.Errorf("error setting speaking state to 'true': %w", err)
	}
	defer vc.Speaking(false)

	done := make(chan error, 1)
	dca.NewStream(session, vc, done)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && err != io.EOF {
			return fmt.Errorf("error occurred while playing sound: %w", err)
		}
	}
	return nil
}
