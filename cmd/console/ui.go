package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config   *ConsoleConfig
	client   *http.Client
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	view       *dialogue.NodeView
	selected   int
	transcript []string
	closed     bool
	loading    bool
	err        error
	statusMsg  string

	// Quit confirmation state
	showQuitModal bool
}

type choiceResultMsg struct {
	view *dialogue.NodeView
	err  error
}

type dialogueClosedMsg struct {
	err error
}

var (
	dialoguePanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingBottom(1).
				PaddingLeft(3).
				PaddingRight(3)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	npcLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, view *dialogue.NodeView) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	ui := ConsoleUI{
		config:   cfg,
		client:   client,
		viewport: vp,
		view:     view,
	}
	ui.transcript = append(ui.transcript, fmt.Sprintf("%s: %s", view.NPCName, view.Text))
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 8
		m.viewport.Height = msg.Height - 6
		m.ready = true
		m.viewport.SetContent(m.renderDialogue())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case choiceResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.viewport.SetContent(m.renderDialogue())
			return m, nil
		}
		m.err = nil
		if msg.view == nil {
			m.closed = true
			m.transcript = append(m.transcript, "(dialogue ended)")
		} else {
			m.view = msg.view
			m.selected = 0
			m.transcript = append(m.transcript, fmt.Sprintf("%s: %s", msg.view.NPCName, msg.view.Text))
		}
		m.viewport.SetContent(m.renderDialogue())
		m.viewport.GotoBottom()
		return m, nil

	case dialogueClosedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		switch msg.String() {
		case "y", "Y", "enter":
			return m, m.closeAndQuit()
		case "n", "N", "esc":
			m.showQuitModal = false
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.closed {
			return m, tea.Quit
		}
		m.showQuitModal = true
		return m, nil

	case "esc":
		if m.closed {
			return m, tea.Quit
		}
		return m, m.closeAndQuit()

	case "up", "k":
		if !m.closed && m.view != nil && m.selected > 0 {
			m.selected--
			m.viewport.SetContent(m.renderDialogue())
		}
		return m, nil

	case "down", "j":
		if !m.closed && m.view != nil && m.selected < len(m.view.Choices)-1 {
			m.selected++
			m.viewport.SetContent(m.renderDialogue())
		}
		return m, nil

	case "enter":
		if m.closed {
			return m, tea.Quit
		}
		if m.view == nil || len(m.view.Choices) == 0 || m.loading {
			return m, nil
		}
		m.loading = true
		m.transcript = append(m.transcript, fmt.Sprintf("You: %s", m.view.Choices[m.selected]))
		m.viewport.SetContent(m.renderDialogue())
		return m, m.submitChoice(m.selected)

	case "ctrl+y":
		if err := clipboard.WriteAll(strings.Join(m.transcript, "\n")); err != nil {
			m.statusMsg = "copy failed"
		} else {
			m.statusMsg = "transcript copied"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) submitChoice(index int) tea.Cmd {
	return func() tea.Msg {
		view, err := submitChoice(m.client, m.config.APIBaseURL, index)
		return choiceResultMsg{view: view, err: err}
	}
}

func (m ConsoleUI) closeAndQuit() tea.Cmd {
	return func() tea.Msg {
		err := closeDialogue(m.client, m.config.APIBaseURL)
		return dialogueClosedMsg{err: err}
	}
}

func (m ConsoleUI) renderDialogue() string {
	if m.view == nil {
		return ""
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 60
	}

	var b strings.Builder

	for _, line := range m.transcript {
		speaker, rest, found := strings.Cut(line, ": ")
		if found && speaker == "You" {
			b.WriteString(wordwrap.String(speakerStyle.Render("You: ")+rest, width))
		} else if found {
			b.WriteString(wordwrap.String(speakerStyle.Render(speaker+": ")+npcLineStyle.Render(rest), width))
		} else {
			b.WriteString(helpStyle.Render(line))
		}
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(wordwrap.String(m.err.Error(), width)))
		b.WriteString("\n\n")
	}

	if m.closed {
		b.WriteString(helpStyle.Render("Press enter to exit."))
		return b.String()
	}

	if m.loading {
		b.WriteString(loadingStyle.Render("..."))
		return b.String()
	}

	for i, label := range m.view.Choices {
		cursor := "  "
		style := choiceStyle
		if i == m.selected {
			cursor = "> "
			style = selectedChoiceStyle
		}
		b.WriteString(cursor + style.Render(label))
		b.WriteString("\n")
	}
	if len(m.view.Choices) == 0 {
		b.WriteString(helpStyle.Render("(no choices; esc to close)"))
	}

	return b.String()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render("Close dialogue and quit? (y/n)")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	title := titleStyle.Render(m.view.NPCName)
	help := helpStyle.Render("up/down: select  enter: choose  esc: close  ctrl+y: copy")
	if m.statusMsg != "" {
		help = help + "  " + loadingStyle.Render(m.statusMsg)
	}

	return dialoguePanelStyle.Render(
		title + "\n\n" + m.viewport.View() + "\n\n" + help,
	)
}
