package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	hookdto "readtrack/internal/modules/hook/dto"
	libdto "readtrack/internal/modules/library/dto"
	timerdto "readtrack/internal/modules/timer/dto"
	"readtrack/internal/ui/app"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeLibrary struct {
	books    []libdto.BookOutput
	progress map[string]int
}

func (f *fakeLibrary) ListBooks(context.Context) ([]libdto.BookOutput, error) {
	return f.books, nil
}

func (f *fakeLibrary) GetBook(_ context.Context, id string) (libdto.BookDetailOutput, error) {
	for _, b := range f.books {
		if b.ID == id {
			return libdto.BookDetailOutput{ID: b.ID, Title: b.Title, PagesTotal: b.PagesTotal}, nil
		}
	}
	return libdto.BookDetailOutput{}, nil
}

func (f *fakeLibrary) AddBook(_ context.Context, title, _ string, _ []string, total, read int) (libdto.BookOutput, error) {
	b := libdto.BookOutput{ID: "b" + title, Title: title, PagesTotal: total, PagesRead: read}
	f.books = append(f.books, b)
	return b, nil
}

func (f *fakeLibrary) SetPagesRead(_ context.Context, id string, pages int) (libdto.BookOutput, error) {
	if f.progress == nil {
		f.progress = map[string]int{}
	}
	f.progress[id] = pages
	return libdto.BookOutput{ID: id, Title: "Dune", PagesRead: pages}, nil
}

type fakeTimer struct {
	resume timerdto.ResumeOutput
}

func (f *fakeTimer) Begin(_ context.Context, bookID string, endTime time.Time) (timerdto.BeginOutput, error) {
	return timerdto.BeginOutput{SessionID: "s1", BookID: bookID, EndTime: endTime}, nil
}

func (f *fakeTimer) Finish(_ context.Context, reason string, _ int) (timerdto.FinishOutput, error) {
	return timerdto.FinishOutput{SessionID: "s1", Reason: reason}, nil
}

func (f *fakeTimer) Resume(context.Context) (timerdto.ResumeOutput, error) {
	return f.resume, nil
}

type fakeHooks struct{}

func (fakeHooks) Doctor(context.Context) ([]hookdto.DoctorResult, error) {
	return []hookdto.DoctorResult{{Name: "devicelock", ChecksumValid: true, BinaryReachable: true, LifecycleOK: true}}, nil
}

// drain runs cmd and feeds what it produces back into m. Commands returned by
// those updates are not followed, so timer ticks never block the test.
func drain(m tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(m, c)
		}
	case spinner.TickMsg, nil:
	default:
		m, _ = m.Update(msg)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(key(k))
	}
	return m, cmd
}

func newApp(t *testing.T, timer *fakeTimer) (tea.Model, *fakeLibrary) {
	t.Helper()
	lib := &fakeLibrary{books: []libdto.BookOutput{{ID: "b1", Title: "Dune", PagesTotal: 412}}}
	clk := fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	var m tea.Model = app.NewModel(lib, timer, fakeHooks{}, app.Options{Clock: clk, DefaultReadingMinutes: 5, TickInterval: time.Second})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drain(m, m.Init())
	return m, lib
}

func TestAddBookScreenPushesAndPops(t *testing.T) {
	t.Parallel()
	m, _ := newApp(t, &fakeTimer{})

	m, _ = press(m, "a")
	if !strings.Contains(m.View(), "Home › Add Book") {
		t.Fatalf("expected add book breadcrumb, got:\n%s", m.View())
	}
	m, _ = press(m, "esc")
	if strings.Contains(m.View(), "Add Book") {
		t.Fatalf("expected home after esc, got:\n%s", m.View())
	}
}

func TestTimerScreenRefusesBackWhileReading(t *testing.T) {
	t.Parallel()
	m, _ := newApp(t, &fakeTimer{})

	m, _ = press(m, "t")
	if !strings.Contains(m.View(), "Home › Reading Timer") {
		t.Fatalf("expected timer screen, got:\n%s", m.View())
	}
	m, cmd := press(m, "enter")
	m = drain(m, cmd)
	m, _ = press(m, "esc")
	view := m.View()
	if !strings.Contains(view, "Reading Timer") || !strings.Contains(view, "stop reading first") {
		t.Fatalf("expected to stay on timer while reading, got:\n%s", view)
	}

	m, cmd = press(m, "x")
	m = drain(m, cmd)
	m, _ = press(m, "esc")
	if strings.Contains(m.View(), "› Reading Timer") {
		t.Fatalf("expected home after stopping, got:\n%s", m.View())
	}
}

func TestInitResumesActiveSession(t *testing.T) {
	t.Parallel()
	timer := &fakeTimer{resume: timerdto.ResumeOutput{
		Active:    true,
		SessionID: "s1",
		BookID:    "b1",
		BookTitle: "Dune",
		EndTime:   time.Date(2026, 3, 14, 9, 1, 30, 0, time.UTC),
	}}
	m, _ := newApp(t, timer)

	view := m.View()
	if !strings.Contains(view, "Reading Timer") || !strings.Contains(view, "session recovered: Dune") {
		t.Fatalf("expected recovered timer, got:\n%s", view)
	}
}

func TestPaletteRecordsProgressForSelectedBook(t *testing.T) {
	t.Parallel()
	m, lib := newApp(t, &fakeTimer{})

	m, _ = press(m, ":")
	for _, r := range "book:progress 120" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := press(m, "enter")
	m, cmd = m.Update(cmd())
	m = drain(m, cmd)
	if lib.progress["b1"] != 120 {
		t.Fatalf("expected 120 pages recorded for b1, got %v", lib.progress)
	}
	if !strings.Contains(m.View(), "Dune: 120 pages read") {
		t.Fatalf("expected progress status, got:\n%s", m.View())
	}
}
