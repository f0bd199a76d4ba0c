package voice

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// FindMember resolves a spoken name to a guild member by checking nickname,
// username, and global name, preferring exact matches over prefix matches.
func FindMember(s *discordgo.Session, guildID, name string) (*discordgo.Member, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("empty member name")
	}

	guild, err := s.State.Guild(guildID)
	var members []*discordgo.Member
	if err == nil && len(guild.Members) > 0 {
		members = guild.Members
	} else {
		members, err = s.GuildMembers(guildID, "", 1000)
		if err != nil {
			return nil, fmt.Errorf("listing members: %w", err)
		}
	}

	var prefix *discordgo.Member
	for _, m := range members {
		for _, candidate := range []string{m.Nick, m.User.Username, m.User.GlobalName} {
			candidate = strings.ToLower(candidate)
			if candidate == "" {
				continue
			}
			if candidate == name {
				return m, nil
			}
			if prefix == nil && strings.HasPrefix(candidate, name) {
				prefix = m
			}
		}
	}
	if prefix != nil {
		return prefix, nil
	}
	return nil, fmt.Errorf("no member matching %q", name)
}

// Moderator executes spoken moderation commands against guild members.
type Moderator struct {
	session *discordgo.Session
}

func NewModerator(s *discordgo.Session) *Moderator {
	return &Moderator{session: s}
}

func (m *Moderator) Mute(guildID, target string) (string, error) {
	member, err := FindMember(m.session, guildID, target)
	if err != nil {
		return "", err
	}
	if err := m.session.GuildMemberMute(guildID, member.User.ID, true); err != nil {
		return "", fmt.Errorf("muting %s: %w", member.User.Username, err)
	}
	return fmt.Sprintf("Muted %s", displayName(member)), nil
}

func (m *Moderator) Unmute(guildID, target string) (string, error) {
	member, err := FindMember(m.session, guildID, target)
	if err != nil {
		return "", err
	}
	if err := m.session.GuildMemberMute(guildID, member.User.ID, false); err != nil {
		return "", fmt.Errorf("unmuting %s: %w", member.User.Username, err)
	}
	return fmt.Sprintf("Unmuted %s", displayName(member)), nil
}

// Kick disconnects the member from voice rather than removing them from
// the guild.
func (m *Moderator) Kick(guildID, target string) (string, error) {
	member, err := FindMember(m.session, guildID, target)
	if err != nil {
		return "", err
	}
	if err := m.session.GuildMemberMove(guildID, member.User.ID, nil); err != nil {
		return "", fmt.Errorf("disconnecting %s: %w", member.User.Username, err)
	}
	return fmt.Sprintf("Kicked %s from voice", displayName(member)), nil
}

func (m *Moderator) Timeout(guildID, target string, minutes int) (string, error) {
	member, err := FindMember(m.session, guildID, target)
	if err != nil {
		return "", err
	}
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := m.session.GuildMemberTimeout(guildID, member.User.ID, &until); err != nil {
		return "", fmt.Errorf("timing out %s: %w", member.User.Username, err)
	}
	return fmt.Sprintf("Timed out %s for %d minutes", displayName(member), minutes), nil
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
