package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/designio"
	"github.com/qiongwang-oai/powertree/pkg/render/powerdot"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// graphFlags holds the command-line flags for the graph command.
type graphFlags struct {
	output     string // output file (single format) or base path (multiple)
	formatsStr string // comma-separated format list
	scenario   string // scenario for --annotate
	annotate   bool   // overlay computed figures and warning highlights
	detailed   bool   // include parameter details in labels
	noCache    bool   // disable result memoization
}

// graphCommand creates the graph command for rendering tree diagrams.
func (c *CLI) graphCommand() *cobra.Command {
	flags := graphFlags{}

	cmd := &cobra.Command{
		Use:   "graph <design.json>",
		Short: "Render a power tree as DOT, SVG, or PNG",
		Long: `Render a power tree design as a Graphviz diagram.

Nodes are shaped and colored by kind; supplies sit on the left, loads on the
right. With --annotate the engine runs first and the diagram carries computed
powers, edge currents, and red outlines on nodes with warnings.

Examples:
  powertree graph board.json                      # board.svg
  powertree graph board.json -f dot               # DOT text to board.dot
  powertree graph board.json -f svg,png --annotate
  powertree graph board.json -o diagrams/board.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formatsStr, c.Config.GraphFormat)
			if err := validateFormats(formats); err != nil {
				return err
			}
			return c.runGraph(args[0], formats, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVarP(&flags.scenario, "scenario", "s", "", "scenario for --annotate (default: design's own)")
	cmd.Flags().BoolVar(&flags.annotate, "annotate", false, "overlay computed figures and warning highlights")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include parameter details in node labels")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable result memoization")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, the config file's graph_format applies, then "svg".
func parseFormats(s, configDefault string) []string {
	if s == "" {
		s = configDefault
	}
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPNG: true}

// validateFormats checks that all requested formats are valid.
// It returns an error if any format is not in validFormats.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.dot, .svg, .png), it strips that extension.
// This is used when generating multiple files (e.g., board.svg, board.png).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runGraph renders the design to every requested format.
func (c *CLI) runGraph(input string, formats []string, flags *graphFlags) error {
	d, err := designio.ImportDesign(input)
	if err != nil {
		return err
	}

	opts := powerdot.Options{Detailed: flags.detailed || c.Config.Detailed}
	if flags.annotate {
		sc, err := c.resolveScenario(flags.scenario)
		if err != nil {
			return err
		}
		res, _, err := c.newComputer(flags.noCache).ComputeWithCacheInfo(d, sc)
		if err != nil {
			return err
		}
		opts.Result = res
	}
	dot := powerdot.ToDOT(d, opts)

	if len(formats) == 1 {
		path := flags.output
		if path == "" {
			path = basePath("", input) + "." + formats[0]
		}
		return c.renderGraphFile(dot, formats[0], path)
	}

	base := basePath(flags.output, input)
	for _, format := range formats {
		if err := c.renderGraphFile(dot, format, base+"."+format); err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
	}
	return nil
}

// renderGraphFile renders dot to one format and writes it to path.
func (c *CLI) renderGraphFile(dot, format, path string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG, formatPNG:
		spinner := newSpinner(fmt.Sprintf("Rendering %s...", format))
		spinner.Start()
		if format == formatSVG {
			data, err = powerdot.RenderSVG(dot)
		} else {
			data, err = powerdot.RenderPNG(dot)
		}
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return err
		}
		spinner.Stop()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	c.Logger.Debugf("Generated %s: %d bytes", format, len(data))
	printFile(path)
	return nil
}
