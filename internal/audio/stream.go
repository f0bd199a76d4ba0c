package audio

import (
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
)

var ErrVoiceConnClosed = errors.New("voice connection send timeout")

// SilenceFrame is the Opus frame for 20ms of silence. Sending a handful of
// these keeps the RTP stream warm without audible output.
var SilenceFrame = []byte{0xF8, 0xFF, 0xFE}

// StreamToVoice reads Opus frames from source and sends them to the Discord
// voice connection. It blocks until all frames are sent or an error occurs.
// Returns nil on clean EOF.
func StreamToVoice(source *FrameReader, vc *discordgo.VoiceConnection) error {
	for {
		frame, err := source.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		timer := time.NewTimer(time.Minute)
		select {
		case vc.OpusSend <- frame:
			timer.Stop()
		case <-timer.C:
			return ErrVoiceConnClosed
		}
	}
}

// SendSilence pushes n silence frames to the voice connection, used by the
// keep-alive loop. Frames that cannot be sent within a second are dropped.
func SendSilence(vc *discordgo.VoiceConnection, n int) {
	for range n {
		timer := time.NewTimer(time.Second)
		select {
		case vc.OpusSend <- SilenceFrame:
			timer.Stop()
		case <-timer.C:
			return
		}
	}
}
