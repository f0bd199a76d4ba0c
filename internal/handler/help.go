package handler

import (
	"github.com/mangabot/manga/internal/presenters"
)

// HelpCommand lists every registered command. Register it last so the
// listing is complete.
func HelpCommand(r *Router) *Command {
	return &Command{
		Name:        "help",
		Aliases:     []string{"commands"},
		Description: "Show this help",
		Run: func(c *Context) error {
			commands := r.Commands()
			entries := make([]presenters.HelpEntry, 0, len(commands))
			for _, cmd := range commands {
				entries = append(entries, presenters.HelpEntry{
					Name:        cmd.Name,
					Description: cmd.Description,
					Usage:       cmd.Usage,
					Level:       cmd.Level,
				})
			}
			return c.ReplyEmbed(presenters.BuildHelpEmbed(r.prefix, entries))
		},
	}
}
