package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mangabot/manga/internal/ai"
	"github.com/mangabot/manga/internal/audio"
	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/stt"
	"github.com/mangabot/manga/internal/tts"
)

const (
	// keepAliveInterval is how often silence frames are pushed so Discord
	// does not drop an idle voice connection.
	keepAliveInterval = 4 * time.Minute
	// rejoinDelay gives gateway state a moment to settle before the bot
	// reconnects to its home channel.
	rejoinDelay = 3 * time.Second
	// manualLeaveWindow bounds how long a deliberate disconnect suppresses
	// the auto-rejoin, in case the gateway never echoes it.
	manualLeaveWindow = 30 * time.Second

	segmentTimeout = 30 * time.Second
)

// SoundPlayer plays a stored sound into a guild's voice connection. The
// soundboard command set provides the implementation.
type SoundPlayer interface {
	Play(ctx context.Context, guildID, name string) error
}

// Handler owns per-guild voice connections and runs the trigger-word
// assistant over everything the sink hears.
type Handler struct {
	session *discordgo.Session
	cfg     *config.DiscordConfig
	voice   *config.VoiceConfig
	trigger *Trigger
	stt     *stt.Service
	tts     *tts.Service
	ai      *ai.Service
	auth    repository.AuthStore
	mod     *Moderator
	sounds  SoundPlayer

	// mu guards conns, manualLeaves, and the mutable guildVoice fields.
	mu           sync.Mutex
	conns        map[string]*guildVoice
	manualLeaves map[string]time.Time
}

type guildVoice struct {
	vc     *discordgo.VoiceConnection
	sink   *Sink
	cancel context.CancelFunc

	textChannelID string
	voiceName     string
	listening     bool
}

func NewHandler(
	session *discordgo.Session,
	cfg *config.DiscordConfig,
	voiceCfg *config.VoiceConfig,
	sttSvc *stt.Service,
	ttsSvc *tts.Service,
	aiSvc *ai.Service,
	auth repository.AuthStore,
) *Handler {
	return &Handler{
		session: session,
		cfg:     cfg,
		voice:   voiceCfg,
		trigger: NewTrigger(voiceCfg.TriggerWord),
		stt:     sttSvc,
		tts:     ttsSvc,
		ai:      aiSvc,
		auth:    auth,
		mod:     NewModerator(session),

		conns:        make(map[string]*guildVoice),
		manualLeaves: make(map[string]time.Time),
	}
}

// SetSoundPlayer wires the soundboard in after construction. It is
// optional; without it auto-play on join is skipped.
func (h *Handler) SetSoundPlayer(p SoundPlayer) {
	h.sounds = p
}

// Join connects to a voice channel and starts listening. Responses go to
// textChannelID when set.
func (h *Handler) Join(guildID, channelID, textChannelID string) error {
	h.mu.Lock()
	if existing, ok := h.conns[guildID]; ok && existing.vc != nil && existing.vc.ChannelID == channelID {
		existing.textChannelID = textChannelID
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	_ = h.Leave(guildID, true)

	vc, err := h.session.ChannelVoiceJoin(guildID, channelID, false, false)
	if err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}

	filter := func(userID string) bool {
		blocked, err := h.auth.InList(context.Background(), guildID, userID, repository.ListBlacklist)
		if err != nil {
			slog.Error("blacklist lookup failed", "guildID", guildID, "userID", userID, "error", err)
			return true
		}
		return !blocked
	}

	ctx, cancel := context.WithCancel(context.Background())
	gv := &guildVoice{
		vc:            vc,
		sink:          NewSink(filter, h.voice.VerboseLogs),
		cancel:        cancel,
		textChannelID: textChannelID,
		voiceName:     tts.DefaultVoice,
		listening:     true,
	}

	h.mu.Lock()
	h.conns[guildID] = gv
	h.mu.Unlock()

	go gv.sink.Run(ctx, vc)
	go h.pump(ctx, guildID, gv)
	go h.keepAlive(ctx, gv)

	slog.Info("joined voice channel", "guildID", guildID, "channelID", channelID)
	return nil
}

// Leave disconnects from the guild's voice channel. Manual leaves are not
// auto-rejoined.
func (h *Handler) Leave(guildID string, manual bool) error {
	h.mu.Lock()
	gv, ok := h.conns[guildID]
	if ok {
		delete(h.conns, guildID)
		if manual {
			// The gateway echo of this disconnect arrives after the map
			// entry is gone, so the flag has to live elsewhere.
			h.manualLeaves[guildID] = time.Now()
		}
	}
	h.mu.Unlock()
	if !ok {
		return nil
	}

	gv.cancel()
	if err := gv.vc.Disconnect(); err != nil {
		return fmt.Errorf("disconnecting: %w", err)
	}
	slog.Info("left voice channel", "guildID", guildID, "manual", manual)
	return nil
}

// consumeManualLeave reports whether the guild's last disconnect was
// deliberate, clearing the marker.
func (h *Handler) consumeManualLeave(guildID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	at, ok := h.manualLeaves[guildID]
	if !ok {
		return false
	}
	delete(h.manualLeaves, guildID)
	return time.Since(at) < manualLeaveWindow
}

// Connection returns the live voice connection for a guild, if any.
func (h *Handler) Connection(guildID string) *discordgo.VoiceConnection {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gv, ok := h.conns[guildID]; ok {
		return gv.vc
	}
	return nil
}

// SetListening toggles the trigger-word assistant without disconnecting.
func (h *Handler) SetListening(guildID string, on bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	gv, ok := h.conns[guildID]
	if !ok {
		return false
	}
	gv.listening = on
	return true
}

// Status describes the guild's voice session for the status command.
func (h *Handler) Status(guildID string) (channelID, voiceName string, listening, connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	gv, ok := h.conns[guildID]
	if !ok {
		return "", "", false, false
	}
	return gv.vc.ChannelID, gv.voiceName, gv.listening, true
}

// Say speaks text in the guild's voice channel using its current voice.
func (h *Handler) Say(ctx context.Context, guildID, text string) error {
	h.mu.Lock()
	gv, ok := h.conns[guildID]
	var vc *discordgo.VoiceConnection
	var voiceName string
	if ok {
		vc = gv.vc
		voiceName = gv.voiceName
	}
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("not connected to voice in guild %s", guildID)
	}
	return h.tts.Speak(ctx, vc, text, voiceName)
}

// SetVoice selects the speaking voice for a guild.
func (h *Handler) SetVoice(guildID, name string) bool {
	if _, ok := tts.Voices[name]; !ok {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	gv, ok := h.conns[guildID]
	if !ok {
		return false
	}
	gv.voiceName = name
	return true
}

func (h *Handler) pump(ctx context.Context, guildID string, gv *guildVoice) {
	for {
		select {
		case <-ctx.Done():
			return
		case seg, ok := <-gv.sink.Segments():
			if !ok {
				return
			}
			go h.processSegment(ctx, guildID, gv, seg)
		}
	}
}

func (h *Handler) processSegment(ctx context.Context, guildID string, gv *guildVoice, seg Segment) {
	defer gv.sink.Finish(seg.UserID)

	h.mu.Lock()
	listening := gv.listening
	h.mu.Unlock()
	if !listening {
		return
	}
	if audio.RMS(seg.PCM) < MinRMS {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, segmentTimeout)
	defer cancel()

	text, err := h.stt.Transcribe(ctx, seg.PCM)
	if err != nil {
		slog.Error("transcription failed", "guildID", guildID, "error", err)
		return
	}
	if text == "" || !h.trigger.Heard(text) {
		return
	}

	if h.voice.VerboseLogs {
		slog.Debug("heard trigger", "guildID", guildID, "userID", seg.UserID, "text", text)
	}

	rest := h.trigger.Strip(text)
	if cmd := ParseCommand(rest); cmd != nil {
		h.runCommand(ctx, guildID, gv, seg.UserID, cmd)
		return
	}
	h.chat(ctx, guildID, gv, seg.UserID, rest)
}

func (h *Handler) runCommand(ctx context.Context, guildID string, gv *guildVoice, userID string, cmd *Command) {
	level, err := repository.ResolveLevel(ctx, h.auth, guildID, userID)
	if err != nil {
		slog.Error("level lookup failed", "guildID", guildID, "userID", userID, "error", err)
		return
	}
	if level < repository.LevelModerator {
		h.respond(ctx, guildID, gv, "You are not allowed to give me orders.")
		return
	}

	switch cmd.Kind {
	case CommandLeave:
		h.respond(ctx, guildID, gv, "Goodbye.")
		if err := h.Leave(guildID, true); err != nil {
			slog.Error("voice leave failed", "guildID", guildID, "error", err)
		}
		return
	case CommandChangeVoice:
		h.mu.Lock()
		gv.voiceName = nextVoice(gv.voiceName)
		name := gv.voiceName
		h.mu.Unlock()
		h.respond(ctx, guildID, gv, "Voice changed to "+name)
		return
	}

	var reply string
	switch cmd.Kind {
	case CommandMute:
		reply, err = h.mod.Mute(guildID, cmd.Target)
	case CommandUnmute:
		reply, err = h.mod.Unmute(guildID, cmd.Target)
	case CommandKick:
		reply, err = h.mod.Kick(guildID, cmd.Target)
	case CommandTimeout:
		reply, err = h.mod.Timeout(guildID, cmd.Target, cmd.Minutes)
	default:
		return
	}
	if err != nil {
		slog.Warn("voice command failed", "guildID", guildID, "error", err)
		reply = "I could not do that."
	}
	h.respond(ctx, guildID, gv, reply)
}

func (h *Handler) chat(ctx context.Context, guildID string, gv *guildVoice, userID, prompt string) {
	if prompt == "" {
		h.respond(ctx, guildID, gv, "Yes?")
		return
	}
	if !h.ai.Enabled() {
		h.respond(ctx, guildID, gv, "I heard you, but my brain is not configured.")
		return
	}

	username := userID
	if member, err := FindMemberByID(h.session, guildID, userID); err == nil {
		username = displayName(member)
	}

	reply, err := h.ai.VoiceResponse(ctx, username, prompt)
	if err != nil {
		slog.Error("voice chat failed", "guildID", guildID, "error", err)
		h.respond(ctx, guildID, gv, "I have nothing to say right now.")
		return
	}
	h.respond(ctx, guildID, gv, reply)
}

// respond posts the reply to the bound text channel and speaks it.
func (h *Handler) respond(ctx context.Context, guildID string, gv *guildVoice, text string) {
	if text == "" {
		return
	}

	h.mu.Lock()
	textChannelID := gv.textChannelID
	voiceName := gv.voiceName
	h.mu.Unlock()

	if textChannelID != "" {
		embed := &discordgo.MessageEmbed{
			Description: text,
			Color:       0x9B59B6,
		}
		if _, err := h.session.ChannelMessageSendEmbed(textChannelID, embed); err != nil {
			slog.Warn("failed to post voice reply", "guildID", guildID, "error", err)
		}
	}
	if err := h.tts.Speak(ctx, gv.vc, text, voiceName); err != nil {
		slog.Error("tts playback failed", "guildID", guildID, "error", err)
	}
}

func (h *Handler) keepAlive(ctx context.Context, gv *guildVoice) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if gv.vc != nil && gv.vc.Ready {
				audio.SendSilence(gv.vc, 10)
			}
		}
	}
}

func nextVoice(current string) string {
	for i, name := range tts.VoiceNames {
		if name == current {
			return tts.VoiceNames[(i+1)%len(tts.VoiceNames)]
		}
	}
	return tts.VoiceNames[0]
}

// HandleVoiceStateUpdate reacts to members joining and leaving voice:
// auto-kick listed users, follow the auto-join user, and rejoin the home
// channel after unexpected disconnects.
func (h *Handler) HandleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.UserID == s.State.User.ID {
		h.handleOwnStateUpdate(vs)
		return
	}
	if vs.ChannelID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kick, err := h.auth.InList(ctx, vs.GuildID, vs.UserID, repository.ListAutoKick)
	if err != nil {
		slog.Error("autokick lookup failed", "guildID", vs.GuildID, "error", err)
	} else if kick {
		if err := s.GuildMemberMove(vs.GuildID, vs.UserID, nil); err != nil {
			slog.Warn("autokick failed", "guildID", vs.GuildID, "userID", vs.UserID, "error", err)
		} else {
			slog.Info("auto-kicked user from voice", "guildID", vs.GuildID, "userID", vs.UserID)
		}
		return
	}

	if h.cfg.AutoJoinUserID != "" && vs.UserID == h.cfg.AutoJoinUserID {
		joinedNew := vs.BeforeUpdate == nil || vs.BeforeUpdate.ChannelID != vs.ChannelID
		if joinedNew {
			if err := h.Join(vs.GuildID, vs.ChannelID, ""); err != nil {
				slog.Error("auto-join failed", "guildID", vs.GuildID, "error", err)
				return
			}
			if h.sounds != nil && h.cfg.AutoPlaySound != "" {
				go func() {
					time.Sleep(time.Second)
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					if err := h.sounds.Play(ctx, vs.GuildID, h.cfg.AutoPlaySound); err != nil {
						slog.Warn("auto-play failed", "guildID", vs.GuildID, "sound", h.cfg.AutoPlaySound, "error", err)
					}
				}()
			}
		}
	}
}

func (h *Handler) handleOwnStateUpdate(vs *discordgo.VoiceStateUpdate) {
	if vs.ChannelID != "" {
		return
	}
	if h.consumeManualLeave(vs.GuildID) {
		return
	}

	h.mu.Lock()
	textChannelID := ""
	if gv, ok := h.conns[vs.GuildID]; ok {
		textChannelID = gv.textChannelID
	}
	h.mu.Unlock()

	go func() {
		time.Sleep(rejoinDelay)
		channelID, err := h.FindHomeChannel(vs.GuildID)
		if err != nil {
			slog.Warn("no home channel to rejoin", "guildID", vs.GuildID, "error", err)
			return
		}
		if err := h.Join(vs.GuildID, channelID, textChannelID); err != nil {
			slog.Error("rejoin failed", "guildID", vs.GuildID, "error", err)
		}
	}()
}

// FindHomeChannel locates the configured home voice channel by name.
func (h *Handler) FindHomeChannel(guildID string) (string, error) {
	channels, err := h.session.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("listing channels: %w", err)
	}
	want := strings.ToLower(h.cfg.HomeVoiceChannel)
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildVoice && strings.ToLower(ch.Name) == want {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("no voice channel named %q", h.cfg.HomeVoiceChannel)
}

// FindMemberByID fetches a member from state, falling back to the API.
func FindMemberByID(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	if member, err := s.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	return s.GuildMember(guildID, userID)
}
