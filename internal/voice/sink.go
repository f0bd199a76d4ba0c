// Package voice implements the listening pipeline: receiving and
// segmenting voice-channel audio, the trigger-word assistant, and the
// voice connection lifecycle.
package voice

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mangabot/manga/internal/audio"
	"layeh.com/gopus"
)

const (
	// MinSegmentBytes is roughly half a second of 48kHz stereo audio.
	MinSegmentBytes = 48000
	// MaxSegmentBytes caps a buffer at about five seconds.
	MaxSegmentBytes = 960000
	// SilenceTimeout is how long a user must stay quiet before their
	// buffer becomes a segment.
	SilenceTimeout = time.Second
	// MinRMS is the loudness floor below which segments are dropped.
	MinRMS = 150

	opusFrameSize = 960 // 20ms at 48kHz
)

// Segment is one utterance from one user, ready for transcription.
type Segment struct {
	UserID string
	PCM    []byte
}

// UserFilter decides whether audio from a user should be captured.
type UserFilter func(userID string) bool

// Sink receives Opus packets from a voice connection, decodes them, and
// buffers PCM per speaker until silence closes the segment.
type Sink struct {
	filter      UserFilter
	verboseLogs bool

	mu         sync.Mutex
	buffers    map[uint32]*userBuffer
	decoders   map[uint32]*gopus.Decoder
	ssrcToUser map[uint32]string
	inflight   map[string]struct{}

	segments chan Segment
	packets  int
}

type userBuffer struct {
	pcm      []byte
	lastSeen time.Time
}

func NewSink(filter UserFilter, verboseLogs bool) *Sink {
	if filter == nil {
		filter = func(string) bool { return true }
	}
	return &Sink{
		filter:      filter,
		verboseLogs: verboseLogs,
		buffers:     make(map[uint32]*userBuffer),
		decoders:    make(map[uint32]*gopus.Decoder),
		ssrcToUser:  make(map[uint32]string),
		inflight:    make(map[string]struct{}),
		segments:    make(chan Segment, 16),
	}
}

// Segments delivers completed utterances. The channel closes when Run
// returns.
func (s *Sink) Segments() <-chan Segment {
	return s.segments
}

// Run consumes the connection's receive channel until the context is
// canceled or the connection closes. Speaking updates map SSRCs to users.
func (s *Sink) Run(ctx context.Context, vc *discordgo.VoiceConnection) {
	defer close(s.segments)

	vc.AddHandler(func(_ *discordgo.VoiceConnection, vs *discordgo.VoiceSpeakingUpdate) {
		s.mu.Lock()
		s.ssrcToUser[uint32(vs.SSRC)] = vs.UserID
		s.mu.Unlock()
	})

	flush := time.NewTicker(250 * time.Millisecond)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-flush.C:
			s.flushIdle()
		case packet, ok := <-vc.OpusRecv:
			if !ok {
				s.flushIdle()
				return
			}
			s.write(packet)
		}
	}
}

func (s *Sink) write(packet *discordgo.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.ssrcToUser[packet.SSRC]
	if userID != "" && !s.filter(userID) {
		return
	}

	decoder, ok := s.decoders[packet.SSRC]
	if !ok {
		var err error
		decoder, err = gopus.NewDecoder(audio.SampleRate, audio.Channels)
		if err != nil {
			slog.Error("failed to create opus decoder", "error", err)
			return
		}
		s.decoders[packet.SSRC] = decoder
	}

	pcm, err := decoder.Decode(packet.Opus, opusFrameSize, false)
	if err != nil {
		return
	}

	buf, ok := s.buffers[packet.SSRC]
	if !ok {
		buf = &userBuffer{}
		s.buffers[packet.SSRC] = buf
		if s.verboseLogs {
			slog.Debug("started receiving audio", "userID", userID, "ssrc", packet.SSRC)
		}
	}

	// Oversized buffers are flushed on the next tick instead of growing.
	if len(buf.pcm) > MaxSegmentBytes {
		buf.lastSeen = time.Time{}
		return
	}

	raw := make([]byte, len(pcm)*2)
	for i, sample := range pcm {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(sample))
	}
	buf.pcm = append(buf.pcm, raw...)
	buf.lastSeen = time.Now()

	s.packets++
	if s.verboseLogs && s.packets%500 == 0 {
		slog.Debug("audio packets received", "count", s.packets)
	}
}

// flushIdle emits segments for users who have enough buffered audio and
// have been silent past the timeout.
func (s *Sink) flushIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for ssrc, buf := range s.buffers {
		userID := s.ssrcToUser[ssrc]
		if userID == "" {
			continue
		}
		if _, busy := s.inflight[userID]; busy {
			continue
		}
		if len(buf.pcm) < MinSegmentBytes {
			continue
		}
		if now.Sub(buf.lastSeen) < SilenceTimeout {
			continue
		}

		segment := Segment{UserID: userID, PCM: buf.pcm}
		buf.pcm = nil
		s.inflight[userID] = struct{}{}

		select {
		case s.segments <- segment:
		default:
			// Drop rather than block the receive loop.
			delete(s.inflight, userID)
		}
	}
}

// Finish marks a user's segment as processed, allowing the next one.
func (s *Sink) Finish(userID string) {
	s.mu.Lock()
	delete(s.inflight, userID)
	s.mu.Unlock()
}
