package util

import (
	"math/rand"
	"strings"
	"unicode"
)

// Emojify converts ASCII letters and digits to regional indicator and
// keycap emoji.
func Emojify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteString(":regional_indicator_")
			b.WriteRune(r)
			b.WriteString(": ")
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			b.WriteString("️⃣ ")
		case r == ' ':
			b.WriteString("   ")
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

var morseTable = map[rune]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..", 'e': ".", 'f': "..-.",
	'g': "--.", 'h': "....", 'i': "..", 'j': ".---", 'k': "-.-", 'l': ".-..",
	'm': "--", 'n': "-.", 'o': "---", 'p': ".--.", 'q': "--.-", 'r': ".-.",
	's': "...", 't': "-", 'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-",
	'y': "-.--", 'z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
}

// Morse encodes text as morse code, separating letters with spaces and
// words with slashes.
func Morse(text string) string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var letters []string
		for _, r := range word {
			if code, ok := morseTable[r]; ok {
				letters = append(letters, code)
			}
		}
		if len(letters) > 0 {
			words = append(words, strings.Join(letters, " "))
		}
	}
	return strings.Join(words, " / ")
}

var flipTable = map[rune]rune{
	'a': 'ɐ', 'b': 'q', 'c': 'ɔ', 'd': 'p', 'e': 'ǝ', 'f': 'ɟ', 'g': 'ƃ',
	'h': 'ɥ', 'i': 'ᴉ', 'j': 'ɾ', 'k': 'ʞ', 'l': 'l', 'm': 'ɯ', 'n': 'u',
	'o': 'o', 'p': 'd', 'q': 'b', 'r': 'ɹ', 's': 's', 't': 'ʇ', 'u': 'n',
	'v': 'ʌ', 'w': 'ʍ', 'x': 'x', 'y': 'ʎ', 'z': 'z',
	'?': '¿', '!': '¡', '.': '˙', ',': '\'',
}

// Flip turns text upside down and reverses it.
func Flip(text string) string {
	runes := []rune(strings.ToLower(text))
	out := make([]rune, 0, len(runes))
	for i := len(runes) - 1; i >= 0; i-- {
		if flipped, ok := flipTable[runes[i]]; ok {
			out = append(out, flipped)
		} else {
			out = append(out, runes[i])
		}
	}
	return string(out)
}

// Scramble shuffles the interior letters of each word, keeping the first
// and last letters in place.
func Scramble(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) <= 3 {
			continue
		}
		inner := runes[1 : len(runes)-1]
		rand.Shuffle(len(inner), func(a, b int) {
			inner[a], inner[b] = inner[b], inner[a]
		})
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// MockCase alternates letter case, sparing non-letters.
func MockCase(text string) string {
	var b strings.Builder
	upper := false
	for _, r := range text {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upper = !upper
	}
	return b.String()
}
