package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"readtrack/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// Palette command names. app/model.go executePalette switches on these.
const (
	CmdBookAdd      = "book:add"
	CmdBookProgress = "book:progress"
	CmdBookReload   = "book:reload"
	CmdTimerOpen    = "timer:open"
	CmdTimerStop    = "timer:stop"
	CmdHooksDoctor  = "hooks:doctor"
)

// PaletteCommand describes one entry of the palette.
type PaletteCommand struct {
	Name string
	Args string
	Help string
}

var PaletteCommands = []PaletteCommand{
	{Name: CmdBookAdd, Help: "add a book"},
	{Name: CmdBookProgress, Args: "<pages-read>", Help: "set pages read for the selected book"},
	{Name: CmdBookReload, Help: "reload the library"},
	{Name: CmdTimerOpen, Help: "open the reading timer for the selected book"},
	{Name: CmdTimerStop, Args: "[pages]", Help: "stop reading and record pages"},
	{Name: CmdHooksDoctor, Help: "check lock/unlock hooks"},
}

const maxMatches = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	selectedStyle = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
)

// MatchCommands returns the commands whose name contains the first word of
// input, name-prefix matches first. An empty input matches everything.
func MatchCommands(input string) []PaletteCommand {
	word := ""
	if fields := strings.Fields(strings.ToLower(input)); len(fields) > 0 {
		word = fields[0]
	}
	var prefix, contains []PaletteCommand
	for _, c := range PaletteCommands {
		switch {
		case strings.HasPrefix(c.Name, word):
			prefix = append(prefix, c)
		case strings.Contains(c.Name, word):
			contains = append(contains, c)
		}
	}
	return append(prefix, contains...)
}

// Palette is a command-palette overlay backed by bubbles/textinput.
type Palette struct {
	input    textinput.Model
	visible  bool
	width    int
	selected int
}

// NewPalette creates an inactive Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command, tab completes…"
	ti.CharLimit = 128
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Value is the current input text.
func (p Palette) Value() string { return p.input.Value() }

// Open shows the palette, clears the input, and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.selected = 0
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		matches := MatchCommands(p.input.Value())
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "up", "ctrl+p":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "down", "ctrl+n":
			if p.selected < min(len(matches), maxMatches)-1 {
				p.selected++
			}
			return p, nil
		case "tab":
			p = p.complete(matches)
			return p, nil
		}
	}
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.selected = 0
	}
	return p, cmd
}

// complete replaces the command word with the selected match, keeping any
// arguments already typed.
func (p Palette) complete(matches []PaletteCommand) Palette {
	if len(matches) == 0 {
		return p
	}
	c := matches[min(p.selected, len(matches)-1)]
	value := c.Name
	if fields := strings.Fields(p.input.Value()); len(fields) > 1 {
		value += " " + strings.Join(fields[1:], " ")
	} else if c.Args != "" {
		value += " "
	}
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.selected = 0
	return p
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matches := MatchCommands(p.input.Value())
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matches) > 0 {
		sb.WriteString("\n")
		for i, c := range matches {
			line := c.Name
			if c.Args != "" {
				line += " " + c.Args
			}
			if i == p.selected {
				sb.WriteString(selectedStyle.Render("› "+line) + hintStyle.Render("  "+c.Help) + "\n")
				continue
			}
			sb.WriteString(hintStyle.Render("  "+line+"  "+c.Help) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
