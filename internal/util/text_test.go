package util

import (
	"strings"
	"testing"
)

func TestEmojify(t *testing.T) {
	got := Emojify("ab 1")
	if !strings.Contains(got, ":regional_indicator_a:") {
		t.Errorf("Emojify missing letter emoji: %q", got)
	}
	if !strings.Contains(got, "1️⃣") {
		t.Errorf("Emojify missing keycap digit: %q", got)
	}
}

func TestMorse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sos", "... --- ..."},
		{"hi there", ".... .. / - .... . .-. ."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Morse(tt.in); got != tt.want {
			t.Errorf("Morse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlip(t *testing.T) {
	if got := Flip("hello"); got != "ollǝɥ" {
		t.Errorf("Flip(hello) = %q", got)
	}
}

func TestScrambleKeepsEnds(t *testing.T) {
	word := "scrambled"
	got := Scramble(word)
	if len(got) != len(word) {
		t.Fatalf("Scramble changed length: %q", got)
	}
	if got[0] != word[0] || got[len(got)-1] != word[len(word)-1] {
		t.Errorf("Scramble moved end letters: %q", got)
	}
}

func TestScrambleShortWordsUnchanged(t *testing.T) {
	if got := Scramble("a to the"); got != "a to the" {
		t.Errorf("Scramble changed short words: %q", got)
	}
}

func TestMockCase(t *testing.T) {
	if got := MockCase("hello there"); got != "hElLo ThErE" {
		t.Errorf("MockCase = %q", got)
	}
}
