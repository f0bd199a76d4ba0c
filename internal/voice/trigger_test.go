package voice

import "testing"

func TestTriggerHeard(t *testing.T) {
	trig := NewTrigger("manga")

	cases := []struct {
		text string
		want bool
	}{
		{"manga what time is it", true},
		{"Manga, tell me a joke", true},
		{"hey manga", true},
		{"منجا كيف حالك", true},
		{"mangago is a website", false},
		{"nothing to see here", false},
		{"", false},
	}
	for _, c := range cases {
		if got := trig.Heard(c.text); got != c.want {
			t.Errorf("Heard(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestTriggerStrip(t *testing.T) {
	trig := NewTrigger("manga")

	cases := []struct {
		text string
		want string
	}{
		{"manga mute bob", "mute bob"},
		{"Manga, tell me a joke", "tell me a joke"},
		{"manga", ""},
	}
	for _, c := range cases {
		if got := trig.Strip(c.text); got != c.want {
			t.Errorf("Strip(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		want *Command
	}{
		{"mute bob", &Command{Kind: CommandMute, Target: "bob"}},
		{"unmute bob", &Command{Kind: CommandUnmute, Target: "bob"}},
		{"kick bad guy", &Command{Kind: CommandKick, Target: "bad guy"}},
		{"timeout bob 10", &Command{Kind: CommandTimeout, Target: "bob", Minutes: 10}},
		{"timeout bob", &Command{Kind: CommandTimeout, Target: "bob", Minutes: defaultTimeoutMinutes}},
		{"change voice", &Command{Kind: CommandChangeVoice}},
		{"voice", &Command{Kind: CommandChangeVoice}},
		{"leave", &Command{Kind: CommandLeave}},
		{"bye now", &Command{Kind: CommandLeave}},
		{"what is the capital of france", nil},
		{"", nil},
	}
	for _, c := range cases {
		got := ParseCommand(c.text)
		if (got == nil) != (c.want == nil) {
			t.Fatalf("ParseCommand(%q) = %+v, want %+v", c.text, got, c.want)
		}
		if got == nil {
			continue
		}
		if *got != *c.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", c.text, got, c.want)
		}
	}
}
