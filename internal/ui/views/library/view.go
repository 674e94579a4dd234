package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	libdto "readtrack/internal/modules/library/dto"
	"readtrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type LibraryPort interface {
	ListBooks(ctx context.Context) ([]libdto.BookOutput, error)
	GetBook(ctx context.Context, id string) (libdto.BookDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type BooksLoadedMsg struct {
	Books []libdto.BookOutput
	Err   error
}

type DetailLoadedMsg struct {
	Detail libdto.BookDetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type bookItem struct {
	book libdto.BookOutput
}

func (i bookItem) Title() string { return i.book.Title }
func (i bookItem) Description() string {
	if i.book.PagesTotal == 0 {
		return fmt.Sprintf("%s  %d pages read", i.book.Status, i.book.PagesRead)
	}
	return fmt.Sprintf("%s  %d/%d  %.0f%%", i.book.Status, i.book.PagesRead, i.book.PagesTotal, i.book.Percent)
}
func (i bookItem) FilterValue() string { return i.book.Title }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     LibraryPort
	list     list.Model
	detail   libdto.BookDetailOutput
	preview  viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	loading  bool
	width    int
	height   int
}

func New(port LibraryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Books"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("book", "books")

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		list:     l,
		preview:  vp,
		spinner:  sp,
		renderer: r,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the book list again, e.g. after a book was added or a
// session moved its progress.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		books, err := m.port.ListBooks(context.Background())
		return BooksLoadedMsg{Books: books, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case BooksLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Books: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Books"
		items := make([]list.Item, len(msg.Books))
		for i, b := range msg.Books {
			items[i] = bookItem{book: b}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if item, ok := m.list.SelectedItem().(bookItem); ok {
			cmds = append(cmds, m.loadDetailCmd(item.book.ID))
		}
		return m, tea.Batch(cmds...)

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(bookItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.book.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading books…")
	}
	if len(m.list.Items()) == 0 && m.list.FilterState() == list.Unfiltered {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No books yet. Press a to add one."))
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(detailW-2, 1)).
		Height(max(m.height-2, 1)).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) SelectedBook() (libdto.BookOutput, bool) {
	if item, ok := m.list.SelectedItem().(bookItem); ok {
		return item.book, true
	}
	return libdto.BookOutput{}, false
}

// Filtering reports whether the list's search filter is open. The app model
// checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = max(detailW-4, 1)
	m.preview.Height = max(m.height-4, 1)
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.preview.Width-2),
	); err == nil {
		m.renderer = r
	}
	if m.detail.ID != "" {
		m.preview.SetContent(m.renderDetail())
	}
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("Select a book to see details")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Title) + "\n\n")
	if len(d.Authors) > 0 {
		sb.WriteString(theme.Muted.Render("by:      ") + strings.Join(d.Authors, ", ") + "\n")
	}
	sb.WriteString(theme.Muted.Render("status:  ") + d.Status + "\n")
	if d.PagesTotal > 0 {
		sb.WriteString(fmt.Sprintf("%s%d / %d (%.1f%%)\n", theme.Muted.Render("pages:   "), d.PagesRead, d.PagesTotal, d.Percent))
	} else {
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("pages:   "), d.PagesRead))
	}
	if d.FilePath != "" {
		sb.WriteString(theme.Muted.Render("file:    ") + d.FilePath + "\n")
	}
	sb.WriteString(theme.Muted.Render("note:    ") + d.NotePath + "\n")
	if !d.UpdatedAt.IsZero() {
		sb.WriteString(theme.Muted.Render("updated: ") + d.UpdatedAt.Local().Format("2006-01-02 15:04") + "\n")
	}

	body := strings.TrimSpace(d.Body)
	if body != "" {
		rendered := body
		if m.renderer != nil {
			if out, err := m.renderer.Render(body); err == nil {
				rendered = out
			}
		}
		sb.WriteString("\n" + rendered)
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: reading timer  a: add book"))
	return sb.String()
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetBook(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
