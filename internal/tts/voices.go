package tts

// Voice names accepted by Speak, mapped to Edge neural voices.
var Voices = map[string]string{
	"english":        "en-US-ChristopherNeural",
	"english_female": "en-US-JennyNeural",
	"arabic":         "ar-EG-SalmaNeural",
	"arabic_male":    "ar-EG-ShakirNeural",
}

// DefaultVoice is used when detection has nothing better.
const DefaultVoice = "english"

// VoiceNames lists the configurable voice keys in cycling order.
var VoiceNames = []string{"english_female", "english", "arabic", "arabic_male"}

// DetectLanguage picks a voice key from the text: mostly non-ASCII text
// (Arabic and friends) selects the arabic voice.
func DetectLanguage(text string) string {
	if len(text) == 0 {
		return DefaultVoice
	}
	nonASCII := 0
	runes := 0
	for _, r := range text {
		runes++
		if r > 127 {
			nonASCII++
		}
	}
	if float64(nonASCII) > float64(runes)*0.3 {
		return "arabic"
	}
	return DefaultVoice
}

// Resolve returns the Edge voice for a configured name, falling back to
// language detection when the name is unknown or empty.
func Resolve(name, text string) string {
	if v, ok := Voices[name]; ok {
		return v
	}
	return Voices[DetectLanguage(text)]
}
