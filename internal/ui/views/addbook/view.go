package addbook

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	libdto "readtrack/internal/modules/library/dto"
	"readtrack/internal/ui/theme"
)

type BookPort interface {
	AddBook(ctx context.Context, title string, pagesTotal, pagesRead int) (libdto.BookOutput, error)
}

// AddedMsg reports the outcome of submitting the form.
type AddedMsg struct {
	Book libdto.BookOutput
	Err  error
}

const (
	fieldName = iota
	fieldTotal
	fieldRead
	fieldCount
)

var labels = [fieldCount]string{"Book Name", "Total Number Of Pages", "Number Of Pages Read"}

type Model struct {
	port       BookPort
	inputs     [fieldCount]textinput.Model
	focus      int
	submitting bool
	err        string
	width      int
}

func New(port BookPort) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		if i != fieldName {
			ti.CharLimit = 6
			ti.Placeholder = "0"
		}
		inputs[i] = ti
	}
	inputs[fieldName].Placeholder = "Title"
	return Model{port: port, inputs: inputs}
}

// Reset clears the form and focuses the first field.
func (m Model) Reset() (Model, tea.Cmd) {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldName
	m.err = ""
	m.submitting = false
	return m, m.inputs[fieldName].Focus()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = min(max(msg.Width-8, 10), 60)
		}
		return m, nil

	case AddedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.focusField((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m.focusField((m.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if m.focus < fieldRead {
				return m.focusField(m.focus + 1)
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) View() string {
	rows := []string{theme.Title.Render("Add Book"), ""}
	for i, input := range m.inputs {
		label := theme.Muted.Render(labels[i])
		if i == m.focus {
			label = theme.Label.Render(labels[i])
		}
		rows = append(rows, label, input.View(), "")
	}
	button := theme.Button.Render("Add Book")
	if m.submitting {
		button = theme.Muted.Render("Adding…")
	}
	rows = append(rows, button)
	width := m.boxWidth()
	if m.err != "" {
		// inner width: pane padding is 2 on each side
		rows = append(rows, "", theme.Error.Width(width-4).Render(m.err))
	}
	rows = append(rows, "", theme.Muted.Render("tab: next field  enter: add  esc: cancel"))
	return theme.Pane.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Err is the validation or save error currently shown, if any.
func (m Model) Err() string { return m.err }

func (m Model) boxWidth() int {
	return min(max(m.width-4, 30), 70)
}

// ParsePages reads a page count field. Blank means zero.
func ParsePages(label, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a whole number", strings.ToLower(label))
	}
	return n, nil
}

func (m Model) focusField(i int) (Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[i].Focus()
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	title := strings.TrimSpace(m.inputs[fieldName].Value())
	if title == "" {
		m.err = "book name is required"
		return m, nil
	}
	total, err := ParsePages(labels[fieldTotal], m.inputs[fieldTotal].Value())
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	read, err := ParsePages(labels[fieldRead], m.inputs[fieldRead].Value())
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	m.submitting = true
	port := m.port
	return m, func() tea.Msg {
		book, err := port.AddBook(context.Background(), title, total, read)
		return AddedMsg{Book: book, Err: err}
	}
}
