package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/juce"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	deviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

type browseKeys struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func (k browseKeys) ShortHelp() []key.Binding { return []key.Binding{k.Up, k.Down, k.Quit} }

func (k browseKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultBrowseKeys = browseKeys{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// browseModel shows device types on the left and the devices of the
// selected type on the right. The device list is scanned before the
// program starts, on the message thread.
type browseModel struct {
	types    []deviceTypeInfo
	keys     browseKeys
	help     help.Model
	selected int
	width    int
}

func newBrowseModel(types []deviceTypeInfo) browseModel {
	return browseModel{
		types: types,
		keys:  defaultBrowseKeys,
		help:  help.New(),
	}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.types)-1 {
				m.selected++
			}
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Audio Devices"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(juce.SystemStats{}.Version()))
	b.WriteString("\n\n")

	if len(m.types) == 0 {
		b.WriteString("No device types available.\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	var left strings.Builder
	for i, t := range m.types {
		if i == m.selected {
			left.WriteString(selectedStyle.Render("> " + t.name))
		} else {
			left.WriteString("  " + t.name)
		}
		left.WriteString("\n")
	}

	t := m.types[m.selected]
	var right strings.Builder
	right.WriteString(headingStyle.Render("Inputs"))
	right.WriteString("\n")
	writeDeviceNames(&right, t.inputs)
	right.WriteString("\n")
	right.WriteString(headingStyle.Render("Outputs"))
	right.WriteString("\n")
	writeDeviceNames(&right, t.outputs)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(strings.TrimRight(left.String(), "\n")),
		panelStyle.Render(strings.TrimRight(right.String(), "\n")),
	))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func writeDeviceNames(b *strings.Builder, names []string) {
	if len(names) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteString("\n")
		return
	}
	for _, n := range names {
		b.WriteString("  ")
		b.WriteString(deviceStyle.Render(n))
		b.WriteString("\n")
	}
}

func newBrowseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse audio devices interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.Unsupported(errors.PhaseConfig, "browse needs a terminal, use the devices command instead")
			}
			var types []deviceTypeInfo
			err := withRuntime(func(*juce.JUCE) error {
				var err error
				types, err = opts.scanDevices()
				return err
			})
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newBrowseModel(types), tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}
}
