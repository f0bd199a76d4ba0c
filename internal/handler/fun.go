package handler

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mangabot/manga/internal/ai"
)

var eightBallAnswers = []string{
	"It is certain.",
	"Without a doubt.",
	"Yes, definitely.",
	"Most likely.",
	"Signs point to yes.",
	"Ask again later.",
	"Better not tell you now.",
	"Don't count on it.",
	"My reply is no.",
	"Very doubtful.",
}

var pickupLines = []string{
	"Are you a magician? Because whenever I look at you, everyone else disappears.",
	"Do you have a map? I keep getting lost in your eyes.",
	"Are you a parking ticket? Because you've got 'fine' written all over you.",
}

var jokes = []string{
	"Why don't scientists trust atoms? Because they make up everything!",
	"I told my wife she was drawing her eyebrows too high. She looked surprised.",
	"Why did the scarecrow win an award? He was outstanding in his field!",
}

var truthQuestions = []string{
	"What's your biggest fear?",
	"What's the most embarrassing thing you've done?",
	"Who's your secret crush?",
}

var dares = []string{
	"Change your nickname to 'Stinky' for 10 minutes.",
	"Send a screenshot of your last DM.",
	"Speak in an accent for the next 5 minutes.",
}

var slotEmojis = []string{"🍎", "🍊", "🍇", "🍒", "💎", "7️⃣"}

// funTarget resolves the first mention or falls back to the invoker.
func funTarget(c *Context) string {
	if u := c.FirstMention(); u != nil {
		if u.GlobalName != "" {
			return u.GlobalName
		}
		return u.Username
	}
	if c.Message.Member != nil && c.Message.Member.Nick != "" {
		return c.Message.Member.Nick
	}
	if c.Message.Author.GlobalName != "" {
		return c.Message.Author.GlobalName
	}
	return c.Message.Author.Username
}

// aiOrFallback asks the AI service when enabled, otherwise picks a canned
// line.
func aiOrFallback(c *Context, svc *ai.Service, prompt string, fallback []string) string {
	if svc != nil && svc.Enabled() {
		if text, err := svc.Generate(c.Ctx, prompt); err == nil {
			return text
		}
	}
	return fallback[rand.Intn(len(fallback))]
}

// FunCommands are games and toys. Several lean on the AI service and fall
// back to canned lines when it is disabled.
func FunCommands(aiSvc *ai.Service) []*Command {
	return []*Command{
		{
			Name:        "8ball",
			Description: "Ask the magic 8-ball",
			Usage:       "<question>",
			Run: func(c *Context) error {
				if strings.TrimSpace(c.Raw) == "" {
					return Userf("Ask a question.")
				}
				return c.Reply(eightBallAnswers[rand.Intn(len(eightBallAnswers))])
			},
		},
		{
			Name:        "roll",
			Aliases:     []string{"dice"},
			Description: "Roll a die",
			Usage:       "[sides]",
			Run: func(c *Context) error {
				sides := 6
				if n, err := strconv.Atoi(c.Arg(0)); err == nil && n > 1 {
					sides = n
				}
				return c.Reply(fmt.Sprintf("🎲 %d (d%d)", rand.Intn(sides)+1, sides))
			},
		},
		{
			Name:        "coinflip",
			Aliases:     []string{"flipcoin"},
			Description: "Flip a coin",
			Run: func(c *Context) error {
				if rand.Intn(2) == 0 {
					return c.Reply("Heads.")
				}
				return c.Reply("Tails.")
			},
		},
		{
			Name:        "choose",
			Aliases:     []string{"choice"},
			Description: "Pick one of several options",
			Usage:       "a | b | c",
			Run: func(c *Context) error {
				options := strings.Split(c.Raw, "|")
				cleaned := options[:0]
				for _, opt := range options {
					if opt = strings.TrimSpace(opt); opt != "" {
						cleaned = append(cleaned, opt)
					}
				}
				if len(cleaned) < 2 {
					return Userf("Give me at least two options separated by `|`.")
				}
				return c.Reply("I choose: " + cleaned[rand.Intn(len(cleaned))])
			},
		},
		{
			Name:        "rps",
			Description: "Rock, paper, scissors",
			Usage:       "rock|paper|scissors",
			Run: func(c *Context) error {
				options := []string{"rock", "paper", "scissors"}
				pick := strings.ToLower(c.Arg(0))
				idx := -1
				for i, opt := range options {
					if opt == pick {
						idx = i
					}
				}
				if idx < 0 {
					return Userf("Play rock, paper, or scissors.")
				}
				botIdx := rand.Intn(3)
				verdict := "It's a tie."
				// Each option beats the one before it in the cycle.
				switch (idx - botIdx + 3) % 3 {
				case 1:
					verdict = "You win!"
				case 2:
					verdict = "I win."
				}
				return c.Reply(fmt.Sprintf("You: **%s** vs me: **%s** — %s", pick, options[botIdx], verdict))
			},
		},
		{
			Name:        "slots",
			Aliases:     []string{"slot"},
			Description: "Spin the slot machine",
			Run: func(c *Context) error {
				a := slotEmojis[rand.Intn(len(slotEmojis))]
				b := slotEmojis[rand.Intn(len(slotEmojis))]
				d := slotEmojis[rand.Intn(len(slotEmojis))]
				line := fmt.Sprintf("🎰 | %s | %s | %s | 🎰", a, b, d)
				switch {
				case a == b && b == d:
					return c.Reply(line + "\n🎉 **Jackpot!**")
				case a == b || b == d:
					return c.Reply(line + "\nTwo matches, so close!")
				default:
					return c.Reply(line + "\nNo match. Try again!")
				}
			},
		},
		{
			Name:        "rate",
			Description: "Rate something out of 10",
			Usage:       "<thing>",
			Run: func(c *Context) error {
				thing := strings.TrimSpace(c.Raw)
				if thing == "" {
					return Userf("Rate what?")
				}
				return c.Reply(fmt.Sprintf("I rate **%s** a **%d/10**", thing, rand.Intn(11)))
			},
		},
		{
			Name:        "iq",
			Description: "Highly scientific IQ estimate",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				iq := rand.Intn(200) + 1
				verdict := "Average."
				switch {
				case iq > 140:
					verdict = "Genius! 🧠"
				case iq > 100:
					verdict = "Smart! 📚"
				case iq <= 70:
					verdict = "Smooth brain 🥔"
				}
				return c.Reply(fmt.Sprintf("🧠 **%s**'s IQ: **%d** — %s", funTarget(c), iq, verdict))
			},
		},
		{
			Name:        "rizz",
			Description: "Rizz rating",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				score := rand.Intn(101)
				verdict := "Mid rizz 😐"
				switch {
				case score > 90:
					verdict = "Rizz god! 🥶"
				case score > 70:
					verdict = "Pretty rizzy! 😎"
				case score <= 20:
					verdict = "No rizz 💀"
				}
				return c.Reply(fmt.Sprintf("😏 **%s**'s rizz: **%d%%** — %s", funTarget(c), score, verdict))
			},
		},
		{
			Name:        "ship",
			Aliases:     []string{"love"},
			Description: "Compatibility score for two users",
			Usage:       "@user [@user]",
			Run: func(c *Context) error {
				mentions := c.Message.Mentions
				if len(mentions) == 0 {
					return Userf("Mention at least one user to ship.")
				}
				first := mentions[0]
				second := c.Message.Author
				if len(mentions) > 1 {
					second = mentions[1]
				}
				score := rand.Intn(101)
				bar := strings.Repeat("█", score/10) + strings.Repeat("░", 10-score/10)
				emoji := "❤️"
				if score < 30 {
					emoji = "💔"
				} else if score > 70 {
					emoji = "💖"
				}
				return c.Reply(fmt.Sprintf(
					"%s **%s** x **%s**: **%d%%** [%s]",
					emoji, first.Username, second.Username, score, bar,
				))
			},
		},
		{
			Name:        "joke",
			Description: "Tell a joke",
			Run: func(c *Context) error {
				return c.Reply("😂 " + aiOrFallback(c, aiSvc, "Tell me a short, funny joke.", jokes))
			},
		},
		{
			Name:        "pickup",
			Description: "Get a pickup line",
			Run: func(c *Context) error {
				line := aiOrFallback(c, aiSvc, "Give me a cheesy or funny pickup line. Just the line, nothing else.", pickupLines)
				return c.Reply("😉 " + line)
			},
		},
		{
			Name:        "roast",
			Description: "Roast a user",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				target := funTarget(c)
				prompt := fmt.Sprintf("Give a short, funny, light-hearted roast for '%s'. Keep it playful, never cruel.", target)
				fallback := []string{fmt.Sprintf("%s, you're like a cloud. When you disappear, it's a beautiful day.", target)}
				return c.Reply("🔥 " + aiOrFallback(c, aiSvc, prompt, fallback))
			},
		},
		{
			Name:        "compliment",
			Description: "Compliment a user",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				target := funTarget(c)
				prompt := fmt.Sprintf("Give a short, sweet, genuine compliment for '%s'.", target)
				fallback := []string{fmt.Sprintf("%s, you're absolutely amazing!", target)}
				return c.Reply("💖 " + aiOrFallback(c, aiSvc, prompt, fallback))
			},
		},
		{
			Name:        "truth",
			Description: "Get a truth question",
			Run: func(c *Context) error {
				q := aiOrFallback(c, aiSvc, "Give me a fun Truth or Dare 'Truth' question suitable for a Discord server.", truthQuestions)
				return c.Reply("🤫 **Truth:** " + q)
			},
		},
		{
			Name:        "dare",
			Description: "Get a dare",
			Run: func(c *Context) error {
				d := aiOrFallback(c, aiSvc, "Give me a funny, harmless dare for a Discord server.", dares)
				return c.Reply("😈 **Dare:** " + d)
			},
		},
		{
			Name:        "trivia",
			Description: "Get a trivia question",
			Run: func(c *Context) error {
				q := aiOrFallback(
					c, aiSvc,
					"Generate a multiple-choice trivia question with the answer spoiler-tagged at the end using ||answer||.",
					[]string{"What is the capital of France? ||Paris||"},
				)
				return c.Reply("❓ " + q)
			},
		},
	}
}
