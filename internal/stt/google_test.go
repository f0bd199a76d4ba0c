package stt

import (
	"sync"
	"testing"
)

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "empty body",
			body:     "",
			expected: "",
		},
		{
			name:     "empty result line only",
			body:     `{"result":[]}`,
			expected: "",
		},
		{
			name: "empty line precedes transcript",
			body: `{"result":[]}
{"result":[{"alternative":[{"transcript":"manga play music","confidence":0.93}],"final":true}],"result_index":0}`,
			expected: "manga play music",
		},
		{
			name:     "transcript with surrounding whitespace",
			body:     `{"result":[{"alternative":[{"transcript":"  hello there "}]}]}`,
			expected: "hello there",
		},
		{
			name: "skips blank alternative",
			body: `{"result":[{"alternative":[{"transcript":""},{"transcript":"second choice"}]}]}`,
			expected: "second choice",
		},
		{
			name:     "garbage line ignored",
			body:     "not json at all",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTranscript([]byte(tt.body)); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSetLanguage(t *testing.T) {
	svc := NewService(nil)
	if svc.Language() != "en-US" {
		t.Fatalf("expected default language en-US, got %q", svc.Language())
	}

	if !svc.SetLanguage("ar") {
		t.Error("expected ar to be supported")
	}
	if svc.Language() != "ar-EG" {
		t.Errorf("expected ar-EG, got %q", svc.Language())
	}

	if svc.SetLanguage("xx") {
		t.Error("expected xx to be rejected")
	}
	if svc.Language() != "ar-EG" {
		t.Errorf("language changed on rejected code: %q", svc.Language())
	}
}

// The language command can fire while segment goroutines are building
// recognition requests, so reads and writes must not race.
func TestLanguageConcurrentAccess(t *testing.T) {
	svc := NewService(nil)
	codes := []string{"en", "ar", "es", "fr", "de"}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				if i%2 == 0 {
					svc.SetLanguage(codes[j%len(codes)])
				} else if svc.Language() == "" {
					t.Error("language read back empty")
				}
			}
		}()
	}
	wg.Wait()

	if _, ok := SupportedLanguages[svc.Language()[:2]]; !ok {
		t.Errorf("settled on unknown language %q", svc.Language())
	}
}
