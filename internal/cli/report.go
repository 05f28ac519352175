package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/designio"
)

// reportFlags holds the command-line flags for the report command.
type reportFlags struct {
	scenario string
	format   string
	output   string
}

// reportCommand creates the report command: a deep rollup of load power and
// losses across every nesting level.
func (c *CLI) reportCommand() *cobra.Command {
	flags := reportFlags{}

	cmd := &cobra.Command{
		Use:   "report <design.json>",
		Short: "Roll up load power and losses across all subsystems",
		Long: `Roll up deep aggregates for a power tree design.

Unlike compute, which reports each embedded subsystem as a single block,
report recurses into every nesting level and sums critical and non-critical
load power, conversion losses, and interconnect losses where they occur.

Examples:
  powertree report board.json
  powertree report board.json --scenario idle
  powertree report board.json -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(flags.format); err != nil {
				return err
			}
			return c.runReport(args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.scenario, "scenario", "s", "", "operating scenario: typical, max, idle (default: design's own)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "table", "output format: table, json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file for json format (stdout if empty)")

	return cmd
}

// runReport imports the design and prints its deep aggregates.
func (c *CLI) runReport(input string, flags *reportFlags) error {
	d, err := designio.ImportDesign(input)
	if err != nil {
		return err
	}
	sc, err := c.resolveScenario(flags.scenario)
	if err != nil {
		return err
	}

	opts := []analysis.Option{analysis.WithLogger(c.Logger)}
	if sc != "" {
		opts = append(opts, analysis.WithScenario(sc))
	}

	prog := newProgress(c.Logger)
	agg := analysis.DeepAggregates(d, opts...)
	prog.done("Aggregated nested subsystems")

	if flags.format == "json" {
		return writeAggregatesJSON(agg, flags.output)
	}

	scName := scenarioLabel(sc)
	if sc == "" && d.Scenario != "" {
		scName = string(d.Scenario)
	}

	printNewline()
	fmt.Println(StyleTitle.Render(d.Name) + StyleDim.Render(" · ") + StyleHighlight.Render(scName+" scenario"))
	printNewline()
	printKeyValue("Critical load", fmtW(agg.CriticalLoadPower))
	printKeyValue("Non-critical", fmtW(agg.NonCriticalLoadPower))
	printKeyValue("Total load", fmtW(agg.TotalLoadPower))
	printKeyValue("Converter loss", fmtW(agg.ConverterLoss))
	printKeyValue("Edge loss", fmtW(agg.EdgeLoss))
	printKeyValue("Input power", fmtW(agg.TotalLoadPower+agg.ConverterLoss+agg.EdgeLoss))
	printNewline()
	return nil
}

// writeAggregatesJSON writes the aggregates as indented JSON.
func writeAggregatesJSON(agg analysis.Aggregates, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(agg); err != nil {
		return fmt.Errorf("encode aggregates: %w", err)
	}
	return nil
}
