package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-duality/internal/i18n"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

// MenuItem represents a selectable level in the menu.
type MenuItem struct {
	LevelID string
	Title   string
	Source  registry.Source
	Best    int // fewest moves on record, 0 if none
}

// MenuChoice is what the player picked from the menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceScoreboard
	ChoiceEdit
	ChoiceNew
	ChoiceCoop
)

var (
	menuTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	menuCurStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	opts     Options
	text     *i18n.Text
	quitting bool
	choice   MenuChoice
}

// NewMenuModel creates a new menu model listing every registered level.
func NewMenuModel(opts Options) MenuModel {
	m := MenuModel{
		width:  opts.Config.ScreenW,
		height: opts.Config.ScreenH,
		opts:   opts,
		text:   i18n.For(opts.Config.Lang),
	}
	m.items = loadMenuItems(opts)
	return m
}

func loadMenuItems(opts Options) []MenuItem {
	infos := registry.List()
	items := make([]MenuItem, 0, len(infos))
	for _, info := range infos {
		item := MenuItem{LevelID: info.ID, Title: info.Title, Source: info.Source}
		if opts.Store != nil {
			if best, ok, err := opts.Store.BestMoves(info.ID); err == nil && ok {
				item.Best = best
			}
		}
		items = append(items, item)
	}
	return items
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.opts.Config.ScreenW = msg.Width
		m.opts.Config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			m.choice = ChoicePlay
		}

	case MenuActionScoreboard:
		m.choice = ChoiceScoreboard

	case MenuActionEdit:
		if len(m.items) > 0 {
			m.choice = ChoiceEdit
		}

	case MenuActionNew:
		m.choice = ChoiceNew

	case MenuActionCoop:
		if m.opts.Coordinator != nil && len(m.items) > 0 {
			m.choice = ChoiceCoop
		}

	case MenuActionLanguage:
		m.opts.Config.Lang = i18n.Toggle(m.opts.Config.Lang)
		m.text = i18n.For(m.opts.Config.Lang)
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(menuTitleStyle.Render(centerText(spaced(m.text.Title), m.width)))
	b.WriteString("\n")
	b.WriteString(menuDimStyle.Render(centerText(m.text.Subtitle, m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.text.Levels, m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		best := "  -"
		if item.Best > 0 {
			best = fmt.Sprintf("%3d", item.Best)
		}
		tag := ""
		if item.Source != registry.SourceCampaign {
			tag = " *"
		}

		line := centerText(fmt.Sprintf("%s%-24s %s%s", cursor, item.Title, best, tag), m.width)
		if i == m.cursor {
			line = menuCurStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Enter: Play  |  E: Edit  |  N: New  |  Tab: " + m.text.Records
	if m.opts.Coordinator != nil {
		controls += "  |  C: Co-op"
	}
	controls += "  |  L: Lang  |  Q: Quit"
	b.WriteString(menuDimStyle.Render(centerText(controls, m.width)))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the level under the cursor, or nil when the list is empty.
func (m MenuModel) Selected() *MenuItem {
	if len(m.items) == 0 {
		return nil
	}
	item := m.items[m.cursor]
	return &item
}

// Choice returns what the player picked, ChoiceNone while browsing.
func (m MenuModel) Choice() MenuChoice {
	return m.choice
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Options returns the session options, updated by resizes and language changes.
func (m MenuModel) Options() Options {
	return m.opts
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}

// spaced puts a space between the letters of a title.
func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

// refreshed returns the menu ready to show again after another screen:
// the choice is cleared, records reloaded and the cursor kept in range.
func (m MenuModel) refreshed(opts Options) MenuModel {
	m.opts = opts
	m.width, m.height = opts.Config.ScreenW, opts.Config.ScreenH
	m.text = i18n.For(opts.Config.Lang)
	m.choice = ChoiceNone
	m.items = loadMenuItems(opts)
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	return m
}
