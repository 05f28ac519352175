package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/buildinfo"
	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/resultcache"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "powertree"

	// defaultCacheEntries bounds the in-process result memo.
	defaultCacheEntries = 64
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "powertree",
		Short:        "Powertree analyzes steady-state power distribution trees",
		Long:         `Powertree computes the steady-state operating point of a power distribution tree: per-node currents, powers, and conversion losses under typical, max, and idle scenarios, with advisory warnings for margin violations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.Logger)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.computeCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.scenariosCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Computer Factory
// =============================================================================

// newComputer creates the engine front end for CLI use. Results are memoized
// unless caching is disabled; a memo that fails to allocate degrades to the
// pass-through computer.
func (c *CLI) newComputer(noCache bool) resultcache.Computer {
	opts := []analysis.Option{analysis.WithLogger(c.Logger)}
	if noCache {
		return resultcache.NewDisabled(opts...)
	}
	entries := c.Config.CacheEntries
	if entries <= 0 {
		entries = defaultCacheEntries
	}
	memo, err := resultcache.New(entries, opts...)
	if err != nil {
		return resultcache.NewDisabled(opts...)
	}
	return memo
}

// =============================================================================
// Options Helpers
// =============================================================================

// resolveScenario picks the effective scenario: an explicit flag wins, then
// the config file; empty means the design's own default.
func (c *CLI) resolveScenario(flag string) (design.Scenario, error) {
	s := flag
	if s == "" {
		s = c.Config.Scenario
	}
	if s == "" {
		return "", nil
	}
	return design.ParseScenario(s)
}

// scenarioLabel names the scenario a result was computed under for display.
func scenarioLabel(sc design.Scenario) string {
	if sc == "" {
		return string(design.ScenarioTypical)
	}
	return string(sc)
}
