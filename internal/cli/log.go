// Package cli implements the powertree command-line interface.
//
// This package provides commands for computing the operating point of power
// tree designs, aggregating deep power rollups, rendering tree diagrams, and
// browsing results interactively. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - compute: Compute per-node currents, powers, and losses for one scenario
//   - report: Roll up critical/non-critical load power and losses across subsystems
//   - scenarios: Compare totals across the typical, max, and idle scenarios
//   - validate: Check a design file for structural problems without computing
//   - graph: Render the tree as DOT, SVG, or PNG
//   - browse: Interactively browse results with live scenario switching
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which traces
// the engine's reconciliation passes.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Computed 42 nodes (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
