// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/mylibrary/internal/book"
	liberrors "github.com/lepinkainen/mylibrary/internal/errors"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionConfirmed indicates the user confirmed the marked books.
	ActionConfirmed
	// ActionStopped indicates the user backed out.
	ActionStopped
)

type bookItem struct {
	*book.Book
}

func (i bookItem) Title() string {
	if i.Book.Title == "" {
		return "(untitled)"
	}
	return i.Book.Title
}

func (i bookItem) FilterValue() string {
	return i.Book.Title
}

func (i bookItem) Description() string {
	parts := []string{i.ISBN13}
	if i.Authors != "" {
		parts = append(parts, i.Authors)
	}
	if i.PublishedDate != "" {
		parts = append(parts, i.PublishedDate)
	}
	return strings.Join(parts, " | ")
}

type itemStyles struct {
	normal    lipgloss.Style
	current   lipgloss.Style
	mark      lipgloss.Style
	metadata  lipgloss.Style
	titleText lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	current := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:  container,
		current: current,
		mark: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		metadata: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		titleText: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
	}
}

type bookDelegate struct {
	styles   itemStyles
	selected map[string]bool
}

func (d bookDelegate) Height() int                         { return 4 }
func (d bookDelegate) Spacing() int                        { return 0 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	it, ok := item.(bookItem)
	if !ok {
		return
	}

	mark := "[ ]"
	if d.selected[it.ID] {
		mark = d.styles.mark.Render("[x]")
	}

	titleLine := fmt.Sprintf("%s %s", mark, d.styles.titleText.Render(truncate(it.Title(), m.Width()-10)))
	metaLine := d.styles.metadata.Render(truncate(it.Description(), m.Width()-4))
	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, metaLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.current
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type selectModel struct {
	list     list.Model
	heading  string
	order    []string
	selected map[string]bool
	action   SelectionAction
}

func newSelectModel(heading string, books []*book.Book) *selectModel {
	selected := make(map[string]bool, len(books))
	listItems := make([]list.Item, len(books))
	order := make([]string, len(books))
	for i, b := range books {
		listItems[i] = bookItem{Book: b}
		order[i] = b.ID
	}

	l := list.New(listItems, bookDelegate{styles: newItemStyles(), selected: selected}, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &selectModel{
		list:     l,
		heading:  heading,
		order:    order,
		selected: selected,
		action:   ActionNone,
	}
}

// Selected returns the marked ids in list order
func (m *selectModel) Selected() []string {
	var ids []string
	for _, id := range m.order {
		if m.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *selectModel) toggleAll() {
	all := len(m.Selected()) == len(m.order)
	for _, id := range m.order {
		m.selected[id] = !all
	}
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "space":
			if it, ok := m.list.SelectedItem().(bookItem); ok {
				m.selected[it.ID] = !m.selected[it.ID]
			}
			return m, nil
		case "a":
			m.toggleAll()
			return m, nil
		case "enter":
			m.action = ActionConfirmed
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			m.action = ActionStopped
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *selectModel) View() string {
	header := headerStyle.Render(m.heading)
	status := helpStyle.Render(fmt.Sprintf("%d of %d marked", len(m.Selected()), len(m.order)))
	help := helpStyle.Render("Up/Down navigate | Space mark | a mark all | Enter confirm | q cancel")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), status, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("161"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectBooks lets the user mark books and returns the marked ids.
// Backing out returns a StopProcessingError.
func SelectBooks(heading string, books []*book.Book) ([]string, error) {
	if len(books) == 0 {
		return nil, nil
	}

	finalModel, err := runProgram(newSelectModel(heading, books))
	if err != nil {
		return nil, err
	}

	typed, ok := finalModel.(*selectModel)
	if !ok {
		return nil, fmt.Errorf("unexpected program result")
	}
	if typed.action != ActionConfirmed {
		return nil, liberrors.NewStopProcessingError("selection cancelled")
	}
	return typed.Selected(), nil
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
