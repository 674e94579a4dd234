package components_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"readtrack/internal/ui/components"
)

func names(cmds []components.PaletteCommand) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name
	}
	return out
}

func TestMatchCommandsPrefersPrefix(t *testing.T) {
	t.Parallel()
	if got := components.MatchCommands(""); len(got) != len(components.PaletteCommands) {
		t.Fatalf("empty input should list every command, got %v", names(got))
	}
	got := names(components.MatchCommands("timer"))
	if len(got) != 2 || got[0] != components.CmdTimerOpen || got[1] != components.CmdTimerStop {
		t.Fatalf("unexpected timer matches: %v", got)
	}
	// "stop" only appears inside timer:stop
	got = names(components.MatchCommands("stop 12"))
	if len(got) != 1 || got[0] != components.CmdTimerStop {
		t.Fatalf("unexpected substring matches: %v", got)
	}
	if got := components.MatchCommands("shelf"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", names(got))
	}
}

func typeInto(p components.Palette, text string) components.Palette {
	for _, r := range text {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

func TestPaletteTabCompletesSelectedCommand(t *testing.T) {
	t.Parallel()
	p := components.NewPalette()
	_ = p.Open()

	p = typeInto(p, "prog")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if p.Value() != "book:progress " {
		t.Fatalf("expected completion with room for args, got %q", p.Value())
	}

	_ = p.Open()
	p = typeInto(p, "timer")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if p.Value() != "timer:stop " {
		t.Fatalf("expected second match after down, got %q", p.Value())
	}

	p = typeInto(p, "30")
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() || cmd == nil {
		t.Fatalf("expected palette to close with a submit command")
	}
	if msg, ok := cmd().(components.PaletteSubmitMsg); !ok || msg.Input != "timer:stop 30" {
		t.Fatalf("unexpected submit: %#v", msg)
	}
}
