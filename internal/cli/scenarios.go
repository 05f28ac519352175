package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/designio"
)

// allScenarios is the fixed comparison order.
var allScenarios = []design.Scenario{
	design.ScenarioTypical,
	design.ScenarioMax,
	design.ScenarioIdle,
}

// scenariosFlags holds the command-line flags for the scenarios command.
type scenariosFlags struct {
	format  string
	output  string
	noCache bool
}

// scenarioSummary is one comparison row, also the JSON output shape.
type scenarioSummary struct {
	Scenario          design.Scenario
	LoadPower         float64
	SourceInput       float64
	OverallEfficiency float64
	Warnings          int
}

// scenariosCommand creates the scenarios command: one design, all three
// scenarios, side by side.
func (c *CLI) scenariosCommand() *cobra.Command {
	flags := scenariosFlags{}

	cmd := &cobra.Command{
		Use:   "scenarios <design.json>",
		Short: "Compare totals across the typical, max, and idle scenarios",
		Long: `Compute a design under all three operating scenarios and compare totals.

Examples:
  powertree scenarios board.json
  powertree scenarios board.json -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(flags.format); err != nil {
				return err
			}
			return c.runScenarios(args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "table", "output format: table, json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file for json format (stdout if empty)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable result memoization")

	return cmd
}

// runScenarios computes every scenario and prints the comparison.
func (c *CLI) runScenarios(input string, flags *scenariosFlags) error {
	d, err := designio.ImportDesign(input)
	if err != nil {
		return err
	}

	computer := c.newComputer(flags.noCache)
	summaries := make([]scenarioSummary, 0, len(allScenarios))
	hasCycle := false

	prog := newProgress(c.Logger)
	for _, sc := range allScenarios {
		res, err := computer.Compute(d, sc)
		if err != nil {
			return err
		}
		hasCycle = hasCycle || res.HasCycle
		summaries = append(summaries, scenarioSummary{
			Scenario:          sc,
			LoadPower:         res.Totals.LoadPower,
			SourceInput:       res.Totals.SourceInput,
			OverallEfficiency: res.Totals.OverallEfficiency,
			Warnings:          warningCount(res),
		})
	}
	prog.done(fmt.Sprintf("Computed %d scenarios", len(allScenarios)))

	if flags.format == "json" {
		return writeSummariesJSON(summaries, flags.output)
	}

	printNewline()
	fmt.Println(StyleTitle.Render(d.Name) + StyleDim.Render(" · scenario comparison"))
	printNewline()

	if hasCycle {
		printError("design contains a cycle; no operating point computed")
		return nil
	}

	rows := [][]string{}
	for _, s := range summaries {
		rows = append(rows, []string{
			string(s.Scenario),
			fmtW(s.LoadPower),
			fmtW(s.SourceInput),
			fmtEff(s.OverallEfficiency),
			strconv.Itoa(s.Warnings),
		})
	}
	t := newTable("SCENARIO", "LOAD", "SOURCE INPUT", "EFFICIENCY", "WARNINGS")
	t.Rows(rows...)
	fmt.Println(t.Render())
	printNewline()
	return nil
}

// writeSummariesJSON writes the comparison rows as indented JSON.
func writeSummariesJSON(summaries []scenarioSummary, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}
	return nil
}
