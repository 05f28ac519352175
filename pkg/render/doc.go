// Package render groups the visualization backends for power-tree designs.
//
// The [powerdot] subpackage renders designs as directed Graphviz diagrams,
// optionally annotated with a computed operating point. It is the only
// renderer today; the package split leaves room for other visual styles
// without disturbing the DOT pipeline.
//
// [powerdot]: github.com/qiongwang-oai/powertree/pkg/render/powerdot
package render
