// Package pkg provides the core libraries for powertree power-tree analysis.
//
// # Overview
//
// Powertree models a power distribution network as a directed graph of
// sources, converters, buses, and loads, and computes its steady-state
// operating point: who draws how much current, at what voltage, and where
// the losses go. The pkg directory is organized into five main areas:
//
//  1. [design] - The power tree model (nodes, edges, efficiency curves)
//  2. [designio] - JSON import and export of designs
//  3. [analysis] - The computation engine (topological ordering, reconciliation, warnings)
//  4. [render/powerdot] - Graphviz diagram generation
//  5. [resultcache] - Memoization for repeat computations
//
// # Architecture
//
// The typical data flow through powertree:
//
//	design JSON file
//	         ↓
//	    [designio] package (decode + structural validation)
//	         ↓
//	    [design] package (graph structure)
//	         ↓
//	    [analysis] package (operating point per scenario)
//	         ↓
//	    tables / JSON / DOT / SVG / PNG output
//
// # Quick Start
//
// Load a design and compute its operating point:
//
//	import (
//	    "github.com/qiongwang-oai/powertree/pkg/analysis"
//	    "github.com/qiongwang-oai/powertree/pkg/design"
//	    "github.com/qiongwang-oai/powertree/pkg/designio"
//	)
//
//	// 1. Import a design
//	d, _ := designio.ImportDesign("board.json")
//
//	// 2. Compute the operating point under the max scenario
//	res := analysis.Compute(d, analysis.WithScenario(design.ScenarioMax))
//
//	// 3. Inspect per-node figures
//	for id, nr := range res.Nodes {
//	    fmt.Printf("%s: in %.2f W, out %.2f W, loss %.2f W\n",
//	        id, nr.PIn, nr.POut, nr.Loss)
//	}
//
//	// 4. Check the totals
//	fmt.Printf("efficiency %.1f%%\n", res.Totals.OverallEfficiency*100)
//
// # Main Packages
//
// [design] - The model. A Design holds nodes (source, load, converter,
// dual_converter, bus, subsystem, subsystem_input) and the edges between
// them. Subsystems embed complete child designs as single blocks. Piecewise
// linear efficiency curves live here too.
//
// [designio] - JSON codec for designs. Import validates structure (unknown
// kinds, duplicate IDs, dangling edge endpoints) and export round-trips
// everything import accepts.
//
// [analysis] - The engine. Orders the tree topologically, then reconciles
// node and edge values with a fixed sequence of passes per scenario
// (typical, max, idle). Results carry per-node and per-edge figures plus
// advisory warnings; cyclic designs yield a zero result with a global
// warning instead of an error. DeepAggregates recursively totals load power
// and losses across nested subsystems.
//
// [render/powerdot] - Graphviz DOT generation and SVG/PNG rasterization.
// Diagrams shape and color nodes by kind and can overlay computed figures
// and warning highlights from an analysis result.
//
// [resultcache] - An LRU-bounded memo keyed by the design's serialized form
// and the scenario. Serves the interactive browser and repeat CLI runs.
//
// [observability] - Hook interfaces for engine, cache, and render events
// with no-op defaults, so instrumentation backends can be attached at
// startup without adding dependencies here.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/analysis/...  # Specific package
//	go test -run Example        # Examples only
//
// [design]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/design
// [designio]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/designio
// [analysis]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/analysis
// [render/powerdot]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/render/powerdot
// [resultcache]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/resultcache
// [observability]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/qiongwang-oai/powertree/pkg/buildinfo
package pkg
