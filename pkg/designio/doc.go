// Package designio provides JSON import and export for power-tree designs.
//
// # Overview
//
// This package serializes designs to and from a JSON format meant for:
//
//   - Hand-written design descriptions fed to the compute commands
//   - Integration with external tools that generate power trees
//   - Round-trip preservation: import, analyze, export, and re-import identically
//
// # JSON Format
//
// A design is an object with "nodes" and "edges" arrays plus optional
// design-level settings:
//
//	{
//	  "name": "server-sled",
//	  "scenario": "typical",
//	  "nodes": [
//	    {"id": "psu", "kind": "source", "source": {"vout": 48, "pout_max": 1600}},
//	    {"id": "buck", "kind": "converter",
//	     "converter": {"vin_min": 40, "vin_max": 60, "vout": 12,
//	                   "efficiency": {"fixed": 0.95}}},
//	    {"id": "fan", "kind": "load", "load": {"vreq": 12, "i_typ": 0.4}}
//	  ],
//	  "edges": [
//	    {"from": "psu", "to": "buck"},
//	    {"from": "buck", "to": "fan", "resistance_milliohm": 5}
//	  ]
//	}
//
// # Node Fields
//
// Every node carries a "kind" naming one of the seven node kinds and a
// parameter block under the key of the same name:
//
//   - source: vout, iout_max, pout_max, redundancy ("N" or "N+1"), count
//   - load: vreq, i_typ, i_max, i_idle, util_typ_pct, util_max_pct,
//     num_paralleled, critical, voltage_margin_pct
//   - converter: vin_min, vin_max, vout, iout_max, pout_max, efficiency,
//     phase_count
//   - dual_converter: vin_min, vin_max, outputs (array of branch objects)
//   - bus: vbus, resistance_milliohm
//   - subsystem: design (a nested design object), num_paralleled, input_v_nom
//   - subsystem_input: vout
//
// An efficiency block is either {"fixed": 0.95} or a piecewise curve:
//
//	{"basis": "output_power",
//	 "points": [{"load_pct": 20, "value": 0.88}, {"load_pct": 50, "value": 0.93}],
//	 "per_phase": true}
//
// Curve points position themselves either by "load_pct" (percent of the
// rated maximum) or by "current" (absolute amperes against iout_max).
//
// Node IDs are optional; omitted ones are assigned fresh UUIDs on import,
// which only makes sense for nodes nothing references. The optional "name"
// is a display label. Edge IDs are likewise optional.
//
// # Import
//
// Use [ImportDesign] to read from a file path, or [ReadDesign] to read from
// any io.Reader:
//
//	d, err := designio.ImportDesign("sled.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both validate structure on the way in: unknown kinds, missing parameter
// blocks, duplicate IDs and dangling edge endpoints are errors wrapped with
// the offending node or edge. Use errors.Is to check for specific causes.
//
// # Export
//
// Use [ExportDesign] to write to a file, or [WriteDesign] to write to any
// io.Writer. The export includes every node and edge plus the design-level
// scenario and margins, so a re-import reproduces the design exactly,
// embedded subsystem designs included.
package designio
