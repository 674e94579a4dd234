package timer

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"readtrack/internal/modules/timer/domain"
	timerdto "readtrack/internal/modules/timer/dto"
	"readtrack/internal/platform/clock"
	"readtrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type TimerPort interface {
	Begin(ctx context.Context, bookID string, endTime time.Time) (timerdto.BeginOutput, error)
	Finish(ctx context.Context, reason string, pagesRead int) (timerdto.FinishOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// tickMsg carries the generation it was scheduled for; ticks from an earlier
// reading window are dropped.
type tickMsg struct{ gen int }

type BeganMsg struct {
	Out timerdto.BeginOutput
	Err error
	gen int
}

type FinishedMsg struct {
	Reason domain.EndReason
	Out    timerdto.FinishOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port           TimerPort
	clock          clock.Clock
	machine        *domain.Machine
	tickInterval   time.Duration
	defaultMinutes int

	bookID    string
	bookTitle string
	candidate time.Time
	picker    textinput.Model
	editing   bool

	gen       int
	starting  bool
	total     time.Duration
	remaining time.Duration
	bar       progress.Model
	status    string
	width     int
}

func New(port TimerPort, clk clock.Clock, defaultMinutes int, tickInterval time.Duration) Model {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	ti := textinput.New()
	ti.Placeholder = "HH:MM or 25m"
	ti.CharLimit = 8
	ti.Width = 12

	bar := progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Green)), progress.WithoutPercentage())
	return Model{
		port:           port,
		clock:          clk,
		machine:        domain.NewMachine(clk),
		tickInterval:   tickInterval,
		defaultMinutes: defaultMinutes,
		picker:         ti,
		bar:            bar,
	}
}

// Open targets a book. A window that is already open keeps running.
func (m Model) Open(bookID, title string) Model {
	if m.machine.Mode() == domain.ModeReading {
		return m
	}
	m.bookID = bookID
	m.bookTitle = title
	m.candidate = domain.DefaultEndTime(m.localNow(), m.defaultMinutes)
	m.editing = false
	m.status = ""
	return m
}

// Resume re-enters Reading for a session that survived a restart. The
// session already exists, so no begin call is made.
func (m Model) Resume(bookID, title string, endTime time.Time) (Model, tea.Cmd) {
	m.bookID = bookID
	m.bookTitle = title
	if err := m.machine.SelectEndTime(endTime); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.startWindow(endTime)
	m.status = "resumed reading session"
	return m, m.tickCmd()
}

func (m Model) Reading() bool { return m.machine.Mode() == domain.ModeReading }

// Editing reports whether the time picker has focus, so esc belongs to it.
func (m Model) Editing() bool { return m.editing }

// Stop ends the open window early, recording pagesRead on the session.
func (m Model) Stop(pagesRead int) (Model, tea.Cmd) {
	if m.starting {
		m.status = "starting…, try again"
		return m, nil
	}
	if _, err := m.machine.Stop(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.gen++
	m.remaining = 0
	m.status = "stopping…"
	return m, m.finishCmd(domain.EndReasonStopped, pagesRead)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-12, 10), 60)
		return m, nil

	case tickMsg:
		if msg.gen != m.gen || m.machine.Mode() != domain.ModeReading {
			return m, nil
		}
		result, err := m.machine.Tick()
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if result.Expired {
			m.gen++
			m.remaining = 0
			return m, m.finishCmd(domain.EndReasonExpired, 0)
		}
		m.remaining = result.Remaining
		return m, m.tickCmd()

	case BeganMsg:
		if msg.gen != m.gen || m.machine.Mode() != domain.ModeReading {
			return m, nil
		}
		m.starting = false
		if msg.Err != nil {
			_, _ = m.machine.Stop()
			m.gen++
			m.status = "could not start: " + msg.Err.Error()
			return m, nil
		}
		if msg.Out.BookTitle != "" {
			m.bookTitle = msg.Out.BookTitle
		}
		m.status = strings.Join(msg.Out.HookMessages, "; ")
		return m, m.tickCmd()

	case FinishedMsg:
		m.candidate = domain.DefaultEndTime(m.localNow(), m.defaultMinutes)
		switch {
		case msg.Err != nil:
			m.status = "could not save session: " + msg.Err.Error()
		case msg.Reason == domain.EndReasonExpired:
			m.status = "Time's up! Session saved to " + msg.Out.NotePath
		default:
			m.status = "Session saved to " + msg.Out.NotePath
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updatePicker(msg)
		}
		if m.machine.Mode() == domain.ModeReading {
			switch msg.String() {
			case "x", "s", "enter":
				return m.Stop(0)
			}
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			return m.start()
		case "c":
			m.editing = true
			m.picker.SetValue("")
			return m, m.picker.Focus()
		case "+", "=":
			m.candidate = m.candidate.Add(time.Minute)
		case "-":
			m.candidate = m.candidate.Add(-time.Minute)
		case "right":
			m.candidate = m.candidate.Add(5 * time.Minute)
		case "left":
			m.candidate = m.candidate.Add(-5 * time.Minute)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Reading Timer"))
	if m.bookTitle != "" {
		sb.WriteString(theme.Muted.Render("  " + m.bookTitle))
	}
	sb.WriteString("\n\n")

	if m.machine.Mode() == domain.ModeReading {
		sb.WriteString(theme.Countdown.Render(domain.ReadingMessage(m.remaining)) + "\n")
		sb.WriteString(theme.Muted.Render(domain.FormatClock(m.remaining)) + "\n\n")
		sb.WriteString(m.bar.ViewAs(m.elapsedFraction()) + "\n\n")
		sb.WriteString(theme.ButtonOutline.Render("Stop reading") + "\n")
		sb.WriteString(theme.Muted.Render("x: stop reading"))
	} else {
		sb.WriteString(theme.Button.Render("Start reading until "+m.candidate.Format("01/02/2006, 15:04")) + "\n\n")
		sb.WriteString(theme.ButtonOutline.Render("Change time") + "\n")
		if m.editing {
			sb.WriteString("\n" + theme.Label.Render("Until: ") + m.picker.View() + "\n")
		}
		sb.WriteString("\n" + theme.Muted.Render("enter: start  c: type a time  +/-: 1 min  ←/→: 5 min  esc: back"))
	}
	if m.status != "" {
		sb.WriteString("\n\n" + m.status)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) start() (Model, tea.Cmd) {
	if m.bookID == "" {
		m.status = "select a book first"
		return m, nil
	}
	endTime := m.candidate
	if err := m.machine.SelectEndTime(endTime); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.startWindow(endTime)
	m.starting = true
	m.status = "starting…"
	return m, m.beginCmd(endTime)
}

func (m *Model) startWindow(endTime time.Time) {
	m.gen++
	if reading, ok := m.machine.State().(domain.Reading); ok {
		m.remaining = reading.Interval.Remaining()
	}
	m.total = endTime.Sub(m.clock.Now())
}

func (m Model) updatePicker(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.picker.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.picker.Value())
		var (
			candidate time.Time
			err       error
		)
		if strings.Contains(value, ":") {
			candidate, err = domain.AtClockTime(m.localNow(), value)
		} else {
			candidate, err = domain.AfterDuration(m.localNow(), value)
		}
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.candidate = candidate
		m.editing = false
		m.status = ""
		m.picker.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) elapsedFraction() float64 {
	if m.total <= 0 {
		return 1
	}
	f := 1 - float64(m.remaining)/float64(m.total)
	return min(max(f, 0), 1)
}

func (m Model) localNow() time.Time {
	return m.clock.Now().In(time.Local)
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tickInterval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m Model) beginCmd(endTime time.Time) tea.Cmd {
	port, bookID, gen := m.port, m.bookID, m.gen
	return func() tea.Msg {
		out, err := port.Begin(context.Background(), bookID, endTime)
		return BeganMsg{Out: out, Err: err, gen: gen}
	}
}

func (m Model) finishCmd(reason domain.EndReason, pagesRead int) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Finish(context.Background(), string(reason), pagesRead)
		return FinishedMsg{Reason: reason, Out: out, Err: err}
	}
}
