package tts

import (
	"strings"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "empty text",
			text:     "",
			expected: "english",
		},
		{
			name:     "plain english",
			text:     "hello there friend",
			expected: "english",
		},
		{
			name:     "arabic text",
			text:     "مرحبا كيف حالك",
			expected: "arabic",
		},
		{
			name:     "mostly english with one accent",
			text:     "cafè latte with extra milk please",
			expected: "english",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("arabic_male", "hello"); got != "ar-EG-ShakirNeural" {
		t.Errorf("expected configured voice, got %q", got)
	}
	if got := Resolve("", "hello"); got != Voices["english"] {
		t.Errorf("expected detected english voice, got %q", got)
	}
	if got := Resolve("unknown", "مرحبا بالعالم"); got != Voices["arabic"] {
		t.Errorf("expected detected arabic voice, got %q", got)
	}
}

func TestBuildSSML(t *testing.T) {
	ssml := BuildSSML(`say "hi" & <wave>`, "en-US-JennyNeural")

	if !strings.Contains(ssml, "en-US-JennyNeural") {
		t.Errorf("missing voice name in %q", ssml)
	}
	if !strings.Contains(ssml, "say &quot;hi&quot; &amp; &lt;wave&gt;") {
		t.Errorf("text not escaped in %q", ssml)
	}
	if strings.Contains(ssml, "<wave>") {
		t.Errorf("raw markup leaked into %q", ssml)
	}
}

func TestVoiceNamesResolvable(t *testing.T) {
	for _, name := range VoiceNames {
		if _, ok := Voices[name]; !ok {
			t.Errorf("voice name %q has no edge voice", name)
		}
	}
}
