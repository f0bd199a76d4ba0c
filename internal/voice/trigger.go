package voice

import (
	"regexp"
	"strconv"
	"strings"
)

// arabicTrigger is the Arabic spelling of the default trigger word.
const arabicTrigger = "منجا"

// Trigger matches the wake word at the start of (or anywhere within) a
// transcribed utterance.
type Trigger struct {
	word     string
	contains *regexp.Regexp
	strip    *regexp.Regexp
}

func NewTrigger(word string) *Trigger {
	word = strings.ToLower(strings.TrimSpace(word))
	quoted := regexp.QuoteMeta(word)
	return &Trigger{
		word:     word,
		contains: regexp.MustCompile(`(?i)(^|\b)(` + quoted + `|` + arabicTrigger + `)\b`),
		strip:    regexp.MustCompile(`(?i)^(` + quoted + `|` + arabicTrigger + `)[,\s]*`),
	}
}

// Heard reports whether the utterance addresses the bot.
func (t *Trigger) Heard(text string) bool {
	return t.contains.MatchString(strings.ToLower(strings.TrimSpace(text)))
}

// Strip removes the leading trigger word, returning the remaining command
// or chat text.
func (t *Trigger) Strip(text string) string {
	return strings.TrimSpace(t.strip.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), ""))
}

// CommandKind classifies a parsed voice command.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandMute
	CommandUnmute
	CommandKick
	CommandTimeout
	CommandChangeVoice
	CommandLeave
)

// Command is a moderation or control order spoken after the trigger word.
type Command struct {
	Kind    CommandKind
	Target  string
	Minutes int
}

var (
	muteRe        = regexp.MustCompile(`^mute\s+(.+)`)
	unmuteRe      = regexp.MustCompile(`^unmute\s+(.+)`)
	kickRe        = regexp.MustCompile(`^kick\s+(.+)`)
	timeoutRe     = regexp.MustCompile(`^timeout\s+(\S+)(?:\s+(\d+))?`)
	changeVoiceRe = regexp.MustCompile(`^change\s*voice$|^voice$`)
	leaveRe       = regexp.MustCompile(`^(leave|disconnect|dc|exit|bye)\b`)
)

// defaultTimeoutMinutes applies when a spoken timeout has no duration.
const defaultTimeoutMinutes = 5

// ParseCommand interprets the post-trigger text as a voice command.
// It returns nil when the text is ordinary chat.
func ParseCommand(text string) *Command {
	text = strings.ToLower(strings.TrimSpace(text))

	if leaveRe.MatchString(text) {
		return &Command{Kind: CommandLeave}
	}
	if changeVoiceRe.MatchString(text) {
		return &Command{Kind: CommandChangeVoice}
	}
	if m := unmuteRe.FindStringSubmatch(text); m != nil {
		return &Command{Kind: CommandUnmute, Target: strings.TrimSpace(m[1])}
	}
	if m := muteRe.FindStringSubmatch(text); m != nil {
		return &Command{Kind: CommandMute, Target: strings.TrimSpace(m[1])}
	}
	if m := kickRe.FindStringSubmatch(text); m != nil {
		return &Command{Kind: CommandKick, Target: strings.TrimSpace(m[1])}
	}
	if m := timeoutRe.FindStringSubmatch(text); m != nil {
		minutes := defaultTimeoutMinutes
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				minutes = n
			}
		}
		return &Command{Kind: CommandTimeout, Target: strings.TrimSpace(m[1]), Minutes: minutes}
	}
	return nil
}
