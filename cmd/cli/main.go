// A development and operations CLI for managing the bot's data without
// going through Discord.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/urfave/cli/v2"

	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/datalayer"
	"github.com/mangabot/manga/internal/repository"
)

func guildFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "guild-id",
		Usage:    "ID of the guild to operate on",
		Required: true,
	}
}

func userFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "user-id",
		Usage:    "ID of the user to operate on",
		Required: true,
	}
}

func main() {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	app := &cli.App{
		Name:        "manga-cli",
		Description: "Manage Manga's storage and integrations without Discord",
		Commands: []*cli.Command{
			{
				Name:  "set-owner",
				Usage: "Set the bot owner for a guild",
				Flags: []cli.Flag{guildFlag(), userFlag()},
				Action: func(c *cli.Context) error {
					stores, err := datalayer.OpenStores(c.Context)
					if err != nil {
						return cli.Exit("Failed to open stores: "+err.Error(), 1)
					}
					defer stores.Close()

					if err := stores.Auth.SetOwner(c.Context, c.String("guild-id"), c.String("user-id")); err != nil {
						return cli.Exit("Failed to set owner: "+err.Error(), 1)
					}
					log.Println("Owner set.")
					return nil
				},
			},
			{
				Name:  "grant",
				Usage: "Grant a bot role (admin or moderator) to a user",
				Flags: []cli.Flag{
					guildFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:     "role",
						Usage:    "admin or moderator",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					role := repository.Role(c.String("role"))
					if role != repository.RoleAdmin && role != repository.RoleModerator {
						return cli.Exit("Role must be admin or moderator", 1)
					}

					stores, err := datalayer.OpenStores(c.Context)
					if err != nil {
						return cli.Exit("Failed to open stores: "+err.Error(), 1)
					}
					defer stores.Close()

					if err := stores.Auth.AddRole(c.Context, c.String("guild-id"), c.String("user-id"), role); err != nil {
						return cli.Exit("Failed to grant role: "+err.Error(), 1)
					}
					log.Printf("Granted %s.", role)
					return nil
				},
			},
			{
				Name:  "blacklist",
				Usage: "Add a user to a guild's blacklist",
				Flags: []cli.Flag{guildFlag(), userFlag()},
				Action: func(c *cli.Context) error {
					stores, err := datalayer.OpenStores(c.Context)
					if err != nil {
						return cli.Exit("Failed to open stores: "+err.Error(), 1)
					}
					defer stores.Close()

					err = stores.Auth.AddToList(c.Context, c.String("guild-id"), c.String("user-id"), repository.ListBlacklist)
					if err != nil {
						return cli.Exit("Failed to blacklist user: "+err.Error(), 1)
					}
					log.Println("User blacklisted.")
					return nil
				},
			},
			{
				Name:  "reminders",
				Usage: "List upcoming reminders for a guild",
				Flags: []cli.Flag{guildFlag()},
				Action: func(c *cli.Context) error {
					stores, err := datalayer.OpenStores(c.Context)
					if err != nil {
						return cli.Exit("Failed to open stores: "+err.Error(), 1)
					}
					defer stores.Close()

					reminders, err := stores.Reminders.ListUpcoming(c.Context, c.String("guild-id"))
					if err != nil {
						return cli.Exit("Failed to list reminders: "+err.Error(), 1)
					}
					if len(reminders) == 0 {
						log.Println("No upcoming reminders.")
						return nil
					}
					for _, r := range reminders {
						log.Printf("%s  %s  (channel %s, user %s)",
							r.RunTime.UTC().Format(time.RFC3339), r.Message, r.ChannelID, r.UserID)
					}
					return nil
				},
			},
			{
				Name:  "sounds",
				Usage: "List stored sounds for a guild",
				Flags: []cli.Flag{guildFlag()},
				Action: func(c *cli.Context) error {
					stores, err := datalayer.OpenStores(c.Context)
					if err != nil {
						return cli.Exit("Failed to open stores: "+err.Error(), 1)
					}
					defer stores.Close()

					sounds, err := stores.Sounds.List(c.Context, c.String("guild-id"))
					if err != nil {
						return cli.Exit("Failed to list sounds: "+err.Error(), 1)
					}
					if len(sounds) == 0 {
						log.Println("No sounds stored.")
						return nil
					}
					for _, s := range sounds {
						log.Printf("%s  %d bytes  (%s)", s.Name, s.FileSize, s.ObjectKey)
					}
					return nil
				},
			},
			{
				Name:  "set-webhook",
				Usage: "Register the Telegram webhook URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "public URL Telegram should POST updates to (e.g. https://host/telegram)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.NewTelegramConfigFromEnv()
					if err != nil {
						return cli.Exit("Failed to load telegram config: "+err.Error(), 1)
					}
					if !cfg.Configured() {
						return cli.Exit("TELEGRAM_TOKEN must be set", 1)
					}
					bot, err := tgbotapi.NewBotAPI(cfg.Token)
					if err != nil {
						return cli.Exit("Failed to create telegram bot: "+err.Error(), 1)
					}
					wh, err := tgbotapi.NewWebhook(c.String("url"))
					if err != nil {
						return cli.Exit("Invalid webhook URL: "+err.Error(), 1)
					}
					if _, err := bot.Request(wh); err != nil {
						return cli.Exit("Failed to register webhook: "+err.Error(), 1)
					}
					info, err := bot.GetWebhookInfo()
					if err != nil {
						return cli.Exit("Failed to fetch webhook info: "+err.Error(), 1)
					}
					fmt.Printf("Webhook registered: %s (pending updates: %d)\n", info.URL, info.PendingUpdateCount)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
