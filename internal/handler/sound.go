package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mangabot/manga/internal/audio"
	"github.com/mangabot/manga/internal/datalayer"
	"github.com/mangabot/manga/internal/generator"
	"github.com/mangabot/manga/internal/presenters"
	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/util"
	"github.com/mangabot/manga/internal/voice"
)

// MaxStorageSize caps a guild's total sound storage.
const MaxStorageSize = 10 * 1024 * 1024 // 10 MB

const presignExpiry = 15 * time.Minute

// HTTPClient is an abstraction for making HTTP requests.
// The implementation is usually Go's stdlib http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AudioPiper downloads an attachment and immediately uploads it to blob
// storage without buffering the whole file.
type AudioPiper struct {
	blobStorage datalayer.BlobStorage
	httpClient  HTTPClient
}

func (a *AudioPiper) Pipe(ctx context.Context, key, sourceURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file: %s", resp.Status)
	}

	err = a.blobStorage.Put(ctx, key, resp.Body, datalayer.PutOptions{
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// CheckStorageAvailable rejects an upload that would push the guild past
// its allowance.
func CheckStorageAvailable(sounds []repository.Sound, requested, maxStorage int64) error {
	var totalSize int64
	for _, sound := range sounds {
		totalSize += sound.FileSize
	}

	if totalSize+requested > maxStorage {
		return &StorageLimitError{
			Requested: requested,
			Current:   totalSize,
			Max:       maxStorage,
		}
	}
	return nil
}

// Sounds is the soundboard: upload, list, play, and delete stored
// sounds. It also backs auto-play on join.
type Sounds struct {
	store repository.SoundStore
	blobs datalayer.BlobStorage
	voice *voice.Handler
	piper *AudioPiper
	ids   generator.Generator[string]
}

func NewSounds(store repository.SoundStore, blobs datalayer.BlobStorage, vh *voice.Handler) *Sounds {
	return &Sounds{
		store: store,
		blobs: blobs,
		voice: vh,
		piper: &AudioPiper{blobStorage: blobs, httpClient: http.DefaultClient},
		ids:   &generator.UUIDV4Generator{},
	}
}

var _ voice.SoundPlayer = (*Sounds)(nil)

// Play streams a stored sound into the guild's voice connection.
func (sb *Sounds) Play(ctx context.Context, guildID, name string) error {
	vc := sb.voice.Connection(guildID)
	if vc == nil {
		return Userf("I am not in a voice channel.")
	}

	sound, err := sb.store.Get(ctx, guildID, strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("looking up sound: %w", err)
	}
	if sound == nil {
		return Userf("No sound named `%s`.", name)
	}

	url, err := sb.blobs.PresignedURL(ctx, sound.ObjectKey, presignExpiry)
	if err != nil {
		return fmt.Errorf("presigning sound URL: %w", err)
	}
	return audio.PlayURL(ctx, vc, url)
}

func (sb *Sounds) add(c *Context) error {
	name := strings.ToLower(c.Arg(0))
	attachments := make(map[string]*attachmentRef, len(c.Message.Attachments))
	for _, a := range c.Message.Attachments {
		attachments[a.ID] = &attachmentRef{a.Filename, a.URL, int64(a.Size)}
	}
	attachment, err := util.OneAttachment(attachments)
	if err != nil {
		return Userf("Attach exactly one audio file.")
	}
	if name == "" {
		name = strings.ToLower(strings.TrimSuffix(attachment.filename, extension(attachment.filename)))
	}

	existing, err := sb.store.List(c.Ctx, c.Message.GuildID)
	if err != nil {
		return fmt.Errorf("listing sounds: %w", err)
	}
	for _, s := range existing {
		if s.Name == name {
			return Userf("A sound named `%s` already exists.", name)
		}
	}
	if err := CheckStorageAvailable(existing, attachment.size, MaxStorageSize); err != nil {
		return Userf("Not enough storage left for that file.")
	}

	id, err := sb.ids.Next()
	if err != nil {
		return fmt.Errorf("generating sound ID: %w", err)
	}
	key := "sounds/" + id

	if err := sb.piper.Pipe(c.Ctx, key, attachment.url); err != nil {
		return fmt.Errorf("piping audio to storage: %w", err)
	}

	err = sb.store.Save(c.Ctx, repository.Sound{
		GuildID:   c.Message.GuildID,
		Name:      name,
		ObjectKey: key,
		FileSize:  attachment.size,
	})
	if err != nil {
		return fmt.Errorf("saving sound: %w", err)
	}
	return c.Reply(fmt.Sprintf("Saved sound `%s`.", name))
}

type attachmentRef struct {
	filename string
	url      string
	size     int64
}

func extension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}

func (sb *Sounds) delete(c *Context) error {
	name := strings.ToLower(c.Arg(0))
	if name == "" {
		return Userf("Which sound? Try `sound delete <name>`.")
	}
	sound, err := sb.store.Get(c.Ctx, c.Message.GuildID, name)
	if err != nil {
		return fmt.Errorf("looking up sound: %w", err)
	}
	if sound == nil {
		return Userf("No sound named `%s`.", name)
	}
	if err := sb.blobs.Remove(c.Ctx, sound.ObjectKey); err != nil {
		return fmt.Errorf("removing blob: %w", err)
	}
	if err := sb.store.Delete(c.Ctx, c.Message.GuildID, name); err != nil {
		return fmt.Errorf("deleting sound: %w", err)
	}
	return c.Reply(fmt.Sprintf("Deleted sound `%s`.", name))
}

func (sb *Sounds) list(c *Context) error {
	sounds, err := sb.store.List(c.Ctx, c.Message.GuildID)
	if err != nil {
		return fmt.Errorf("listing sounds: %w", err)
	}
	return c.ReplyEmbed(presenters.BuildSoundListEmbed(sounds))
}

// SoundCommands returns the soundboard command set.
func SoundCommands(sb *Sounds) []*Command {
	return []*Command{
		{
			Name:        "sound",
			Description: "Manage and play stored sounds",
			Usage:       "add|play|list|delete [name]",
			Run: func(c *Context) error {
				switch c.Arg(0) {
				case "add":
					c.Args = c.Args[1:]
					return sb.add(c)
				case "delete", "remove":
					c.Args = c.Args[1:]
					return sb.delete(c)
				case "list", "":
					return sb.list(c)
				case "play":
					return sb.Play(c.Ctx, c.Message.GuildID, c.Arg(1))
				default:
					// Bare name is shorthand for play.
					return sb.Play(c.Ctx, c.Message.GuildID, c.Arg(0))
				}
			},
		},
	}
}
