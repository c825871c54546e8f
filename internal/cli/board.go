package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
)

var boardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

var boardHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

type boardModel struct {
	report  *core.StatusReport
	loadErr []string
	loading bool
	err     error
}

// reportLoadedMsg carries a freshly generated report back to the model.
type reportLoadedMsg struct {
	report  *core.StatusReport
	loadErr []string
	err     error
}

func loadReport() tea.Msg {
	report, scan, err := Status.GenerateReport(context.Background())
	if err != nil {
		return reportLoadedMsg{err: err}
	}
	var loadErrs []string
	for _, e := range scan.Errors {
		loadErrs = append(loadErrs, e.Error())
	}
	return reportLoadedMsg{report: report, loadErr: loadErrs}
}

func newBoardModel() boardModel {
	return boardModel{loading: true}
}

func (m boardModel) Init() tea.Cmd {
	return loadReport
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadReport
		}
	case reportLoadedMsg:
		m.loading = false
		m.report = msg.report
		m.loadErr = msg.loadErr
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m boardModel) View() string {
	s := boardTitleStyle.Render("taskboard") + "\n\n"

	switch {
	case m.loading:
		s += "Loading report...\n"
	case m.err != nil:
		s += errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	default:
		for _, e := range m.loadErr {
			s += errStyle.Render(e) + "\n"
		}
		s += renderReport(m.report)
	}

	s += "\n" + boardHelpStyle.Render("r: refresh • q: quit")
	return s
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive status board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Status == nil {
			return fmt.Errorf("status service not initialized")
		}
		p := tea.NewProgram(newBoardModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running board: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
