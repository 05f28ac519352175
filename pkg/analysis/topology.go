package analysis

import "github.com/qiongwang-oai/powertree/pkg/design"

// topoOrder runs Kahn's algorithm over the design and returns node IDs in
// topological order (supplies before consumers). hasCycle is true when at
// least one directed cycle prevents a complete ordering; the returned order
// is then partial and must not be used for evaluation.
//
// The ordering is deterministic: ready nodes are taken in design insertion
// order and the frontier is a FIFO queue.
func topoOrder(d *design.Design) (order []string, hasCycle bool) {
	nodes := d.Nodes()
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = len(d.Incoming(n.ID))
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order = make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, e := range d.Outgoing(id) {
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	return order, len(order) < len(nodes)
}
