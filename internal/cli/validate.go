package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/designio"
)

// maxValidateDepth caps the subsystem walk, matching the engine's recursion
// guard.
const maxValidateDepth = 64

// validateCommand creates the validate command: structural checks without
// computing an operating point.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <design.json>",
		Short: "Check a design file for structural problems",
		Long: `Check a design file for structural problems without computing.

Import already rejects malformed JSON, unknown node kinds, duplicate IDs, and
edges with missing endpoints. validate additionally walks every nesting level
looking for cycles and subsystems without an embedded design.

The command exits non-zero when issues are found, so it can gate CI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

// runValidate imports the design and reports structural issues.
func (c *CLI) runValidate(input string) error {
	d, err := designio.ImportDesign(input)
	if err != nil {
		return err
	}

	issues := structuralIssues(d, "", 0)
	if len(issues) > 0 {
		for _, issue := range issues {
			printWarning("%s", issue)
		}
		return fmt.Errorf("%d structural issue(s) in %s", len(issues), input)
	}

	printSuccess("%s is well-formed", d.Name)
	printDetail("%d nodes, %d edges", d.NodeCount(), d.EdgeCount())
	printNextStep("Compute it", fmt.Sprintf("%s compute %s", appName, input))
	return nil
}

// structuralIssues walks the design and its embedded designs, collecting
// structural problems. at names the current level for messages; empty means
// the top level.
func structuralIssues(d *design.Design, at string, depth int) []string {
	var issues []string
	loc := func(msg string) string {
		if at == "" {
			return msg
		}
		return at + ": " + msg
	}

	if depth >= maxValidateDepth {
		return []string{loc(fmt.Sprintf("subsystem nesting exceeds %d levels", maxValidateDepth))}
	}

	if designHasCycle(d) {
		issues = append(issues, loc("design contains a cycle"))
	}
	for _, n := range d.Nodes() {
		s, ok := n.Params.(*design.Subsystem)
		if !ok {
			continue
		}
		if s.Inner == nil {
			issues = append(issues, loc(fmt.Sprintf("subsystem %s has no embedded design", n.Label())))
			continue
		}
		inner := n.Label()
		if at != "" {
			inner = at + "/" + n.Label()
		}
		issues = append(issues, structuralIssues(s.Inner, inner, depth+1)...)
	}
	return issues
}

// designHasCycle runs Kahn's algorithm over the design's adjacency without
// producing an order; any node left unvisited sits on a cycle.
func designHasCycle(d *design.Design) bool {
	indegree := make(map[string]int, d.NodeCount())
	for _, n := range d.Nodes() {
		indegree[n.ID] = 0
	}
	for _, e := range d.Edges() {
		indegree[e.To]++
	}

	queue := []string{}
	for _, n := range d.Nodes() {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, e := range d.Outgoing(id) {
			indegree[e.To]--
			if indegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	return visited != d.NodeCount()
}
