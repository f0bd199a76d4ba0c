package handler

import (
	"testing"

	"github.com/mangabot/manga/internal/config"
)

func newTestRouter() *Router {
	cfg := &config.DiscordConfig{Prefix: "!"}
	return NewRouter(cfg, nil, nil)
}

func TestRouterLookupAliases(t *testing.T) {
	r := newTestRouter()
	cmd := &Command{Name: "join", Aliases: []string{"summon"}}
	r.Register(cmd)

	if got := r.Lookup("join"); got != cmd {
		t.Error("Lookup(join) did not return the command")
	}
	if got := r.Lookup("summon"); got != cmd {
		t.Error("Lookup(summon) did not resolve the alias")
	}
	if got := r.Lookup("SUMMON"); got != cmd {
		t.Error("Lookup should be case-insensitive")
	}
	if got := r.Lookup("nope"); got != nil {
		t.Errorf("Lookup(nope) = %v, want nil", got)
	}
}

func TestRouterCommandsOrder(t *testing.T) {
	r := newTestRouter()
	a := &Command{Name: "a", Aliases: []string{"aa"}}
	b := &Command{Name: "b"}
	r.Register(a, b)

	got := r.Commands()
	if len(got) != 2 {
		t.Fatalf("Commands() returned %d entries, want 2 (aliases must not duplicate)", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Error("Commands() lost registration order")
	}
}

func TestContextArgs(t *testing.T) {
	c := &Context{Args: []string{"add", "welcome", "now"}}

	if got := c.Arg(1); got != "welcome" {
		t.Errorf("Arg(1) = %q", got)
	}
	if got := c.Arg(5); got != "" {
		t.Errorf("Arg(5) = %q, want empty", got)
	}
	if got := c.RestFrom(1); got != "welcome now" {
		t.Errorf("RestFrom(1) = %q", got)
	}
	if got := c.RestFrom(9); got != "" {
		t.Errorf("RestFrom(9) = %q, want empty", got)
	}
}
