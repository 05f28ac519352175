// Package powerdot renders power-tree designs as Graphviz diagrams.
//
// # Overview
//
// This package produces directed diagrams of a design, one box per node,
// arrows following the direction of power flow. Node shapes and colors
// distinguish the node kinds: sources and input ports are feed-in wedges,
// converters are green boxes, buses grey connectors, loads blue boxes and
// subsystems folder shapes.
//
// # Usage
//
// Convert a design to DOT format, then render to SVG or PNG:
//
//	dot := powerdot.ToDOT(d, powerdot.Options{})
//	svg, err := powerdot.RenderSVG(dot)
//
// Passing a computed result annotates the diagram with operating-point
// figures and highlights nodes that carry warnings:
//
//	res := analysis.Compute(d)
//	dot := powerdot.ToDOT(d, powerdot.Options{Result: res})
//
// # DOT Format
//
// [ToDOT] produces plain Graphviz DOT source that can be rendered with
// [RenderSVG] or [RenderPNG], saved for external Graphviz tooling, or
// customized before rendering. Embedded subsystem designs appear as a
// single folder node; render them separately to inspect their interior.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz via
// WebAssembly; no external binaries are required.
package powerdot
