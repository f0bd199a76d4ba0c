// Package tts synthesizes speech through the Edge read-aloud websocket
// service and feeds the result into Discord voice playback.
package tts

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	edgeEndpoint     = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	trustedToken     = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	outputFormat     = "audio-24khz-48kbitrate-mono-mp3"
	binaryHeaderSize = 2
)

// Synthesizer converts text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, edgeVoice string) ([]byte, error)
}

// EdgeSynthesizer talks to the Edge speech gateway.
type EdgeSynthesizer struct {
	dialer *websocket.Dialer
}

func NewEdgeSynthesizer() *EdgeSynthesizer {
	return &EdgeSynthesizer{
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

var _ Synthesizer = (*EdgeSynthesizer)(nil)

// Synthesize connects, sends the speech config and SSML, and collects the
// binary audio frames until the turn ends.
func (s *EdgeSynthesizer) Synthesize(ctx context.Context, text, edgeVoice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	connID := randomHexID()
	url := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", edgeEndpoint, trustedToken, connID)

	conn, _, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial edge tts: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	configMsg := fmt.Sprintf(
		"X-Timestamp:%s\r\nContent-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n"+
			`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"%s"}}}}`,
		timestamp(), outputFormat,
	)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return nil, fmt.Errorf("failed to send speech config: %w", err)
	}

	ssmlMsg := fmt.Sprintf(
		"X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nX-Timestamp:%s\r\nPath:ssml\r\n\r\n%s",
		randomHexID(), timestamp(), BuildSSML(text, edgeVoice),
	)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return nil, fmt.Errorf("failed to send ssml: %w", err)
	}

	var audio bytes.Buffer
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("edge tts read failed: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				if audio.Len() == 0 {
					return nil, fmt.Errorf("edge tts produced no audio")
				}
				return audio.Bytes(), nil
			}
		case websocket.BinaryMessage:
			if len(data) < binaryHeaderSize {
				continue
			}
			headerLen := int(data[0])<<8 | int(data[1])
			payloadStart := binaryHeaderSize + headerLen
			if payloadStart > len(data) {
				continue
			}
			header := string(data[binaryHeaderSize:payloadStart])
			if strings.Contains(header, "Path:audio") {
				audio.Write(data[payloadStart:])
			}
		}
	}
}

// BuildSSML wraps escaped text in the minimal SSML envelope the service
// expects.
func BuildSSML(text, edgeVoice string) string {
	escaped := escapeSSML(text)
	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'><voice name='%s'>%s</voice></speak>`,
		edgeVoice, escaped,
	)
}

func escapeSSML(text string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(text)
}

func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

func randomHexID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
