package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/designio"
)

// computeFlags holds the command-line flags for the compute command.
type computeFlags struct {
	scenario string // operating scenario override
	format   string // output format: "table" or "json"
	output   string // output file path (stdout if empty)
	edges    bool   // include the per-edge table
	noCache  bool   // disable result memoization
}

// computeCommand creates the compute command: load a design, run the engine,
// print the operating point.
func (c *CLI) computeCommand() *cobra.Command {
	flags := computeFlags{}

	cmd := &cobra.Command{
		Use:   "compute <design.json>",
		Short: "Compute the operating point of a power tree design",
		Long: `Compute the steady-state operating point of a power tree design.

Loads the design, orders it topologically, and reconciles per-node currents,
powers, and losses under one scenario. Warnings are advisory: they flag margin
violations and suspicious configurations but never fail the command.

Examples:
  powertree compute board.json                  # design's own scenario
  powertree compute board.json --scenario max   # worst case
  powertree compute board.json --edges          # include interconnect table
  powertree compute board.json -f json -o result.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(flags.format); err != nil {
				return err
			}
			return c.runCompute(args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.scenario, "scenario", "s", "", "operating scenario: typical, max, idle (default: design's own)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "table", "output format: table, json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file for json format (stdout if empty)")
	cmd.Flags().BoolVar(&flags.edges, "edges", false, "include the per-edge table")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable result memoization")

	return cmd
}

// runCompute imports the design, computes it, and prints the result.
func (c *CLI) runCompute(input string, flags *computeFlags) error {
	d, err := designio.ImportDesign(input)
	if err != nil {
		return err
	}
	sc, err := c.resolveScenario(flags.scenario)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, cached, err := c.newComputer(flags.noCache).ComputeWithCacheInfo(d, sc)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed %d nodes", d.NodeCount()))

	if flags.format == "json" {
		return writeResultJSON(res, flags.output)
	}

	printNewline()
	fmt.Println(StyleTitle.Render(res.Design) + StyleDim.Render(" · ") + StyleHighlight.Render(scenarioLabel(res.Scenario)+" scenario"))
	printStats(d.NodeCount(), d.EdgeCount(), cached)
	printNewline()

	if res.HasCycle {
		printError("design contains a cycle; no operating point computed")
		for _, w := range res.GlobalWarnings {
			printWarning("%s", w)
		}
		return nil
	}

	fmt.Println(nodeTable(d, res))
	if flags.edges && d.EdgeCount() > 0 {
		printNewline()
		fmt.Println(edgeTable(d, res))
	}

	printNewline()
	printKeyValue("Load power", fmtW(res.Totals.LoadPower))
	printKeyValue("Source input", fmtW(res.Totals.SourceInput))
	printKeyValue("Efficiency", fmtEff(res.Totals.OverallEfficiency))
	printNewline()

	printResultWarnings(d, res)
	return nil
}

// validateOutputFormat checks the --format flag of the tabular commands.
func validateOutputFormat(f string) error {
	if f != "table" && f != "json" {
		return fmt.Errorf("invalid format: %s (must be 'table' or 'json')", f)
	}
	return nil
}

// nodeTable renders the per-node operating point in topological order, with
// per-branch rows under dual-output converters.
func nodeTable(d *design.Design, res *analysis.Result) string {
	rows := [][]string{}
	for _, id := range res.Order {
		n, ok := d.Node(id)
		nr := res.Nodes[id]
		if !ok || nr == nil {
			continue
		}
		rows = append(rows, nodeRow(n, nr))
		if dc, isDual := n.Params.(*design.DualConverter); isDual {
			for _, b := range dc.Outputs {
				br := nr.Branches[b.ID]
				if br == nil {
					continue
				}
				rows = append(rows, []string{
					"  " + iconArrow + " " + b.ID, "branch",
					fmtW(br.PIn), fmtW(br.POut), "", fmtA(br.IOut), fmtW(br.PIn - br.POut), "",
				})
			}
		}
	}
	t := newTable("NODE", "KIND", "P IN", "P OUT", "I IN", "I OUT", "LOSS", "WARN")
	t.Rows(rows...)
	return t.Render()
}

// nodeRow formats one node's figures for the table.
func nodeRow(n *design.Node, nr *analysis.NodeResult) []string {
	warn := ""
	if len(nr.Warnings) > 0 {
		warn = strconv.Itoa(len(nr.Warnings)) + iconWarning
	}
	return []string{
		n.Label(),
		nr.Kind.String(),
		fmtW(nr.PIn),
		fmtW(nr.POut),
		fmtA(nr.IIn),
		fmtA(nr.IOut),
		fmtW(nr.Loss),
		warn,
	}
}

// edgeTable renders per-edge current, drop, and dissipation.
func edgeTable(d *design.Design, res *analysis.Result) string {
	rows := [][]string{}
	for _, e := range d.Edges() {
		er := res.Edges[e.ID]
		if er == nil {
			continue
		}
		route := fmt.Sprintf("%s %s %s", e.From, iconArrow, e.To)
		rows = append(rows, []string{e.ID, route, fmtA(er.I), fmtV(er.VDrop), fmtW(er.PLoss)})
	}
	t := newTable("EDGE", "ROUTE", "I", "V DROP", "P LOSS")
	t.Rows(rows...)
	return t.Render()
}

// warningCount sums node-level and design-level warnings.
func warningCount(res *analysis.Result) int {
	count := len(res.GlobalWarnings)
	for _, nr := range res.Nodes {
		count += len(nr.Warnings)
	}
	return count
}

// printResultWarnings lists node warnings in topological order, then the
// design-level ones.
func printResultWarnings(d *design.Design, res *analysis.Result) {
	count := warningCount(res)
	if count == 0 {
		printSuccess("No warnings")
		return
	}
	printInfo("%d warning(s)", count)
	for _, id := range res.Order {
		n, ok := d.Node(id)
		if !ok {
			continue
		}
		for _, w := range res.Nodes[id].Warnings {
			printWarning("%s: %s", n.Label(), w)
		}
	}
	for _, w := range res.GlobalWarnings {
		printWarning("%s", w)
	}
}

// writeResultJSON writes the result as indented JSON to path (stdout if empty).
func writeResultJSON(res *analysis.Result, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
