package tts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mangabot/manga/internal/audio"
)

// Service synthesizes text and plays it on a voice connection.
type Service struct {
	synth Synthesizer
}

func NewService(synth Synthesizer) *Service {
	if synth == nil {
		synth = NewEdgeSynthesizer()
	}
	return &Service{synth: synth}
}

// Speak synthesizes text with the named voice (auto-detected when empty)
// and streams it to the voice connection. It blocks until playback ends.
func (s *Service) Speak(ctx context.Context, vc *discordgo.VoiceConnection, text, voiceName string) error {
	if vc == nil || !vc.Ready {
		return fmt.Errorf("not connected to voice")
	}

	preview := text
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	slog.Info("speaking", "text", preview, "voice", voiceName)

	synthCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mp3, err := s.synth.Synthesize(synthCtx, text, Resolve(voiceName, text))
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	frames, err := audio.Encode(bytes.NewReader(mp3))
	if err != nil {
		return fmt.Errorf("failed to transcode speech: %w", err)
	}
	defer frames.Close()

	if err := vc.Speaking(true); err != nil {
		return fmt.Errorf("failed to set speaking state: %w", err)
	}
	defer func() {
		if err := vc.Speaking(false); err != nil {
			slog.Warn("failed to stop speaking", "error", err)
		}
	}()

	if err := audio.StreamToVoice(audio.NewFrameReader(frames), vc); err != nil {
		return fmt.Errorf("failed to stream speech: %w", err)
	}
	return nil
}
