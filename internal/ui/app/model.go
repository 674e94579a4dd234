package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hookdto "readtrack/internal/modules/hook/dto"
	libdto "readtrack/internal/modules/library/dto"
	timerdto "readtrack/internal/modules/timer/dto"
	"readtrack/internal/platform/clock"
	"readtrack/internal/ui/components"
	"readtrack/internal/ui/theme"
	addbookview "readtrack/internal/ui/views/addbook"
	libraryview "readtrack/internal/ui/views/library"
	timerview "readtrack/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type libraryPort interface {
	ListBooks(ctx context.Context) ([]libdto.BookOutput, error)
	GetBook(ctx context.Context, id string) (libdto.BookDetailOutput, error)
	AddBook(ctx context.Context, title, filePath string, authors []string, pagesTotal, pagesRead int) (libdto.BookOutput, error)
	SetPagesRead(ctx context.Context, bookID string, pagesRead int) (libdto.BookOutput, error)
}

type timerPort interface {
	Begin(ctx context.Context, bookID string, endTime time.Time) (timerdto.BeginOutput, error)
	Finish(ctx context.Context, reason string, pagesRead int) (timerdto.FinishOutput, error)
	Resume(ctx context.Context) (timerdto.ResumeOutput, error)
}

type hookPort interface {
	Doctor(ctx context.Context) ([]hookdto.DoctorResult, error)
}

// Options carries the timer settings into the reading timer screen.
type Options struct {
	Clock                 clock.Clock
	DefaultReadingMinutes int
	TickInterval          time.Duration
}

// ─── async messages ───────────────────────────────────────────────────────────

type resumedMsg struct {
	out timerdto.ResumeOutput
	err error
}

type progressSavedMsg struct {
	book libdto.BookOutput
	err  error
}

type doctorMsg struct {
	results []hookdto.DoctorResult
	err     error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Add     key.Binding
	Timer   key.Binding
	Back    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Stop    key.Binding
	Adjust  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add book")),
		Timer:   key.NewBinding(key.WithKeys("enter", "t"), key.WithHelp("enter/t", "reading timer")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop reading")),
		Adjust:  key.NewBinding(key.WithKeys("+", "-", "left", "right"), key.WithHelp("+/-/←/→", "change time")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Timer, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Timer, k.Back},
		{k.Adjust, k.Stop},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the screen stack, the help
// overlay and the command palette; rendering is delegated to the screens.
type Model struct {
	library libraryPort
	timer   timerPort
	hooks   hookPort

	nav       components.Navigator
	libView   libraryview.Model
	formView  addbookview.Model
	timerView timerview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(library libraryPort, timer timerPort, hooks hookPort, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	return Model{
		library:   library,
		timer:     timer,
		hooks:     hooks,
		nav:       components.NewNavigator(),
		libView:   libraryview.New(libraryPortBridge{p: library}),
		formView:  addbookview.New(addBookBridge{p: library}),
		timerView: timerview.New(timer, opts.Clock, opts.DefaultReadingMinutes, opts.TickInterval),
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.libView.Init(), m.resumeCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette takes all key input while open. Everything else keeps
	// flowing so a running countdown does not stall behind it.
	if key, ok := msg.(tea.KeyMsg); ok && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(key)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case resumedMsg:
		switch {
		case msg.err != nil:
			m.status = "active session check: " + msg.err.Error()
		case msg.out.Active:
			var cmd tea.Cmd
			m.timerView, cmd = m.timerView.Resume(msg.out.BookID, msg.out.BookTitle, msg.out.EndTime)
			m.nav.Push(components.ScreenReadingTimer)
			m.status = "session recovered: " + msg.out.BookTitle
			return m, cmd
		case msg.out.Expired:
			m.status = "reading window for " + msg.out.BookTitle + " ended while away"
			return m, m.libView.Reload()
		}
		return m, nil

	case addbookview.AddedMsg:
		var cmd tea.Cmd
		m.formView, cmd = m.formView.Update(msg)
		if msg.Err != nil {
			return m, cmd
		}
		if m.nav.Top() == components.ScreenAddBook {
			m.nav.Pop()
		}
		m.status = "added " + msg.Book.Title
		return m, tea.Batch(cmd, m.libView.Reload())

	case timerview.FinishedMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		if msg.Err != nil {
			m.status = "session end failed: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("session %s (%s)", msg.Out.Reason, formatSeconds(msg.Out.DurationSec))
		}
		return m, tea.Batch(cmd, m.libView.Reload())

	case progressSavedMsg:
		if msg.err != nil {
			m.status = "progress: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s: %d pages read", msg.book.Title, msg.book.PagesRead)
		return m, m.libView.Reload()

	case doctorMsg:
		m.status = summarizeDoctor(msg.results, msg.err)
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (list, spinner, cursor blink, timer ticks) goes to every
	// screen; each ignores what is not addressed to it.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.libView, cmd = m.libView.Update(msg)
	cmds = append(cmds, cmd)
	m.formView, cmd = m.formView.Update(msg)
	cmds = append(cmds, cmd)
	m.timerView, cmd = m.timerView.Update(msg)
	cmds = append(cmds, cmd)
	m.palette, cmd = m.palette.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.nav.Top() {
	case components.ScreenAddBook:
		if msg.String() == "esc" {
			m.nav.Pop()
			m.status = "ready"
			return m, nil
		}
		m.formView, cmd = m.formView.Update(msg)
		return m, cmd

	case components.ScreenReadingTimer:
		if m.timerView.Editing() {
			m.timerView, cmd = m.timerView.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "esc":
			if m.timerView.Reading() {
				m.status = "stop reading first (x)"
				return m, nil
			}
			m.nav.Pop()
			return m, nil
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd
	}

	// Home. Yield to the list while its search filter is open.
	if m.libView.Filtering() {
		m.libView, cmd = m.libView.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case ":":
		return m, m.palette.Open()
	case "a":
		return m.openAddBook()
	case "enter", "t":
		return m.openTimer()
	}
	m.libView, cmd = m.libView.Update(msg)
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView(contentH)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) activeView(height int) string {
	switch m.nav.Top() {
	case components.ScreenAddBook:
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.formView.View())
	case components.ScreenReadingTimer:
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.timerView.View())
	}
	return m.libView.View()
}

func (m Model) renderHeader() string {
	bar := theme.Hot.Render("readtrack") + "  " + theme.Muted.Render(m.nav.Breadcrumb())
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.timerView.Reading() {
		left = theme.Hot.Render("● reading") + "  " + left
	}
	right := theme.Muted.Render("?:help  :::palette  esc:back  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case components.CmdBookAdd:
		return m.openAddBook()

	case components.CmdBookProgress:
		book, ok := m.libView.SelectedBook()
		if !ok {
			m.status = "no book selected"
			return m, nil
		}
		if len(parts) < 2 {
			m.status = "usage: book:progress <pages-read>"
			return m, nil
		}
		pages, err := strconv.Atoi(parts[1])
		if err != nil || pages < 0 {
			m.status = "pages read must be a whole number"
			return m, nil
		}
		return m, m.setProgressCmd(book.ID, pages)

	case components.CmdBookReload:
		return m, m.libView.Reload()

	case components.CmdTimerOpen:
		return m.openTimer()

	case components.CmdTimerStop:
		if !m.timerView.Reading() {
			m.status = "no reading window is open"
			return m, nil
		}
		pages := 0
		if len(parts) >= 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 0 {
				m.status = "pages must be a whole number"
				return m, nil
			}
			pages = n
		}
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Stop(pages)
		return m, cmd

	case components.CmdHooksDoctor:
		return m, m.doctorCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) openAddBook() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.formView, cmd = m.formView.Reset()
	m.nav.Push(components.ScreenAddBook)
	return m, cmd
}

func (m Model) openTimer() (tea.Model, tea.Cmd) {
	if m.timerView.Reading() {
		m.nav.Push(components.ScreenReadingTimer)
		return m, nil
	}
	book, ok := m.libView.SelectedBook()
	if !ok {
		m.status = "no book selected"
		return m, nil
	}
	m.timerView = m.timerView.Open(book.ID, book.Title)
	m.nav.Push(components.ScreenReadingTimer)
	return m, nil
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.libView, _ = m.libView.Update(sz)
	m.formView, _ = m.formView.Update(sz)
	m.timerView, _ = m.timerView.Update(sz)
}

func formatSeconds(sec int) string {
	return (time.Duration(sec) * time.Second).String()
}

func summarizeDoctor(results []hookdto.DoctorResult, err error) string {
	if err != nil {
		return "hooks: " + err.Error()
	}
	if len(results) == 0 {
		return "hooks: none configured"
	}
	healthy := 0
	var problems []string
	for _, r := range results {
		if r.Error == "" {
			healthy++
			continue
		}
		problems = append(problems, r.Name+": "+r.Error)
	}
	summary := fmt.Sprintf("hooks: %d/%d healthy", healthy, len(results))
	if len(problems) > 0 {
		summary += " (" + strings.Join(problems, "; ") + ")"
	}
	return summary
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		if m.timer == nil {
			return resumedMsg{}
		}
		out, err := m.timer.Resume(context.Background())
		return resumedMsg{out: out, err: err}
	}
}

func (m Model) setProgressCmd(bookID string, pages int) tea.Cmd {
	return func() tea.Msg {
		book, err := m.library.SetPagesRead(context.Background(), bookID, pages)
		return progressSavedMsg{book: book, err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		if m.hooks == nil {
			return doctorMsg{}
		}
		results, err := m.hooks.Doctor(context.Background())
		return doctorMsg{results: results, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows the library port to what one screen needs.

type libraryPortBridge struct{ p libraryPort }

func (b libraryPortBridge) ListBooks(ctx context.Context) ([]libdto.BookOutput, error) {
	return b.p.ListBooks(ctx)
}
func (b libraryPortBridge) GetBook(ctx context.Context, id string) (libdto.BookDetailOutput, error) {
	return b.p.GetBook(ctx, id)
}

type addBookBridge struct{ p libraryPort }

func (b addBookBridge) AddBook(ctx context.Context, title string, pagesTotal, pagesRead int) (libdto.BookOutput, error) {
	return b.p.AddBook(ctx, title, "", nil, pagesTotal, pagesRead)
}
