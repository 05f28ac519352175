package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/designio"
	"github.com/qiongwang-oai/powertree/pkg/resultcache"
)

var browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

// browseCommand creates the browse command: an interactive result browser
// with live scenario switching.
func (c *CLI) browseCommand() *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "browse <design.json>",
		Short: "Browse computed results interactively",
		Long: `Browse a design's operating point in the terminal.

Keys:
  left/h, right/l   switch scenario (results are memoized, so this is instant)
  up/k, down/j      move the node cursor
  q, esc            quit

The selected node's warnings are shown under the table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(args[0], scenario)
		},
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "starting scenario (default: design's own)")

	return cmd
}

// runBrowse computes the starting scenario and hands off to bubbletea.
func (c *CLI) runBrowse(input, scenario string) error {
	d, err := designio.ImportDesign(input)
	if err != nil {
		return err
	}
	sc, err := c.resolveScenario(scenario)
	if err != nil {
		return err
	}
	if sc == "" {
		sc = d.Scenario
	}
	if sc == "" {
		sc = design.ScenarioTypical
	}

	computer := c.newComputer(false)
	res, cached, err := computer.ComputeWithCacheInfo(d, sc)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newBrowseModel(d, computer, sc, res, cached))
	_, err = p.Run()
	return err
}

// =============================================================================
// browseModel - Interactive result browser
// =============================================================================

// browseModel is the bubbletea model for the result browser.
type browseModel struct {
	design   *design.Design
	computer resultcache.Computer
	scenario design.Scenario
	result   *analysis.Result
	cached   bool
	err      error

	cursor int
	offset int
	height int
}

// newBrowseModel creates a browse model showing res.
func newBrowseModel(d *design.Design, computer resultcache.Computer, sc design.Scenario, res *analysis.Result, cached bool) browseModel {
	return browseModel{
		design:   d,
		computer: computer,
		scenario: sc,
		result:   res,
		cached:   cached,
		height:   15,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.result.Order)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "left", "h":
			return m.switchScenario(-1), nil
		case "right", "l", "tab":
			return m.switchScenario(1), nil
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// switchScenario steps through the scenario ring and recomputes. The memo
// serves repeat visits from cache.
func (m browseModel) switchScenario(step int) browseModel {
	idx := 0
	for i, sc := range allScenarios {
		if sc == m.scenario {
			idx = i
			break
		}
	}
	idx = (idx + step + len(allScenarios)) % len(allScenarios)
	m.scenario = allScenarios[idx]

	res, cached, err := m.computer.ComputeWithCacheInfo(m.design, m.scenario)
	if err != nil {
		m.err = err
		return m
	}
	m.result = res
	m.cached = cached
	m.err = nil
	return m
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.design.Name))
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(m.scenarioTabs())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ scenario  ↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if m.result.HasCycle {
		b.WriteString(StyleWarning.Render("design contains a cycle; no operating point"))
		b.WriteString("\n")
		for _, w := range m.result.GlobalWarnings {
			b.WriteString(StyleDim.Render("  " + w))
			b.WriteString("\n")
		}
		return b.String()
	}
	if len(m.result.Order) == 0 {
		b.WriteString(StyleDim.Render("design has no nodes"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.nodeView())
	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	b.WriteString("\n")
	return b.String()
}

// scenarioTabs renders the scenario ring with the active one highlighted.
func (m browseModel) scenarioTabs() string {
	parts := make([]string, len(allScenarios))
	for i, sc := range allScenarios {
		label := string(sc)
		if sc == m.scenario {
			parts[i] = browseSelectedStyle.Render(label)
		} else {
			parts[i] = StyleDim.Render(label)
		}
	}
	return strings.Join(parts, StyleDim.Render(" | "))
}

// nodeView renders the visible window of the node table.
func (m browseModel) nodeView() string {
	order := m.result.Order
	end := m.offset + m.height
	if end > len(order) {
		end = len(order)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n, _ := m.design.Node(order[i])
		nr := m.result.Nodes[order[i]]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, nodeRow(n, nr)...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "NODE", "KIND", "P IN", "P OUT", "I IN", "I OUT", "LOSS", "WARN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}

			style := lipgloss.NewStyle()
			if col > 2 {
				style = style.Align(lipgloss.Right)
			}

			actualIdx := m.offset + row
			if actualIdx == m.cursor {
				return style.Bold(true).Foreground(colorCyan)
			}
			if actualIdx < len(order) {
				if nr := m.result.Nodes[order[actualIdx]]; nr != nil && len(nr.Warnings) > 0 {
					return style.Foreground(colorYellow)
				}
			}
			return style
		})
	return t.Render()
}

// detailView shows the selected node's feed voltage and warnings.
func (m browseModel) detailView() string {
	order := m.result.Order
	if m.cursor >= len(order) {
		return ""
	}
	n, _ := m.design.Node(order[m.cursor])
	nr := m.result.Nodes[order[m.cursor]]

	var b strings.Builder
	b.WriteString(StyleValue.Render(n.Label()))
	if nr.VUpstream > 0 {
		b.WriteString(StyleDim.Render("  fed at " + fmtV(nr.VUpstream)))
	}
	b.WriteString("\n")

	if len(nr.Warnings) == 0 {
		b.WriteString(StyleDim.Render("  no warnings"))
		b.WriteString("\n")
		return b.String()
	}
	for _, w := range nr.Warnings {
		b.WriteString(StyleWarning.Render("  " + iconWarning + " " + w))
		b.WriteString("\n")
	}
	return b.String()
}

// footerView shows totals, cache status, and the cursor position.
func (m browseModel) footerView() string {
	t := m.result.Totals

	status := iconFresh
	statusStyle := styleComputed
	if m.cached {
		status = iconCached
		statusStyle = styleCached
	}

	return StyleDim.Render(fmt.Sprintf("load %s · source %s · efficiency %s · ",
		fmtW(t.LoadPower), fmtW(t.SourceInput), fmtEff(t.OverallEfficiency))) +
		statusStyle.Render(status) +
		StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.result.Order)))
}
