package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmModel struct {
	prompt   string
	answered bool
	yes      bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.answered, m.yes = true, true
		return m, tea.Quit
	case "n", "N", "enter", "esc", "q", "ctrl+c":
		m.answered, m.yes = true, false
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.answered {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		promptStyle.Render(m.prompt),
		helpStyle.Render("y confirm | n (default) cancel"),
	)
}

// Confirm asks a yes/no question. Anything but an explicit yes is a no.
func Confirm(prompt string) (bool, error) {
	finalModel, err := runProgram(&confirmModel{prompt: prompt})
	if err != nil {
		return false, err
	}

	typed, ok := finalModel.(*confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected program result")
	}
	return typed.yes, nil
}
