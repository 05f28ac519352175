package designio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

type designJSON struct {
	Name     string       `json:"name,omitempty"`
	Scenario string       `json:"scenario,omitempty"`
	Margins  *marginsJSON `json:"margins,omitempty"`
	Nodes    []nodeJSON   `json:"nodes"`
	Edges    []edgeJSON   `json:"edges"`
}

// marginsJSON uses pointers so a hand-written file can override margins
// selectively; absent fields keep the design defaults.
type marginsJSON struct {
	CurrentPct       *float64 `json:"current_pct,omitempty"`
	PowerPct         *float64 `json:"power_pct,omitempty"`
	VoltageDropPct   *float64 `json:"voltage_drop_pct,omitempty"`
	VoltageMarginPct *float64 `json:"voltage_margin_pct,omitempty"`
}

type nodeJSON struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Kind string `json:"kind"`

	Source         *sourceJSON    `json:"source,omitempty"`
	Load           *loadJSON      `json:"load,omitempty"`
	Converter      *converterJSON `json:"converter,omitempty"`
	DualConverter  *dualJSON      `json:"dual_converter,omitempty"`
	Bus            *busJSON       `json:"bus,omitempty"`
	Subsystem      *subsystemJSON `json:"subsystem,omitempty"`
	SubsystemInput *portJSON      `json:"subsystem_input,omitempty"`
}

type sourceJSON struct {
	Vout       float64 `json:"vout"`
	IoutMax    float64 `json:"iout_max,omitempty"`
	PoutMax    float64 `json:"pout_max,omitempty"`
	Redundancy string  `json:"redundancy,omitempty"`
	Count      int     `json:"count,omitempty"`
}

type loadJSON struct {
	Vreq             float64  `json:"vreq"`
	ITyp             float64  `json:"i_typ,omitempty"`
	IMax             float64  `json:"i_max,omitempty"`
	IIdle            *float64 `json:"i_idle,omitempty"`
	UtilTypPct       float64  `json:"util_typ_pct,omitempty"`
	UtilMaxPct       float64  `json:"util_max_pct,omitempty"`
	NumParalleled    int      `json:"num_paralleled,omitempty"`
	Critical         bool     `json:"critical,omitempty"`
	VoltageMarginPct float64  `json:"voltage_margin_pct,omitempty"`
}

type converterJSON struct {
	VinMin     float64         `json:"vin_min,omitempty"`
	VinMax     float64         `json:"vin_max,omitempty"`
	Vout       float64         `json:"vout"`
	IoutMax    float64         `json:"iout_max,omitempty"`
	PoutMax    float64         `json:"pout_max,omitempty"`
	Efficiency *efficiencyJSON `json:"efficiency,omitempty"`
	PhaseCount int             `json:"phase_count,omitempty"`
}

type dualJSON struct {
	VinMin  float64      `json:"vin_min,omitempty"`
	VinMax  float64      `json:"vin_max,omitempty"`
	Outputs []branchJSON `json:"outputs"`
}

type branchJSON struct {
	ID         string          `json:"id"`
	Vout       float64         `json:"vout"`
	IoutMax    float64         `json:"iout_max,omitempty"`
	PoutMax    float64         `json:"pout_max,omitempty"`
	Efficiency *efficiencyJSON `json:"efficiency,omitempty"`
	PhaseCount int             `json:"phase_count,omitempty"`
}

type busJSON struct {
	VBus               float64 `json:"vbus"`
	ResistanceMilliOhm float64 `json:"resistance_milliohm,omitempty"`
}

type subsystemJSON struct {
	Design        *designJSON `json:"design,omitempty"`
	NumParalleled int         `json:"num_paralleled,omitempty"`
	InputVNom     *float64    `json:"input_v_nom,omitempty"`
}

type portJSON struct {
	Vout float64 `json:"vout,omitempty"`
}

type efficiencyJSON struct {
	Fixed    float64          `json:"fixed,omitempty"`
	Basis    string           `json:"basis,omitempty"`
	Points   []curvePointJSON `json:"points,omitempty"`
	PerPhase bool             `json:"per_phase,omitempty"`
}

type curvePointJSON struct {
	LoadPct *float64 `json:"load_pct,omitempty"`
	Current *float64 `json:"current,omitempty"`
	Value   float64  `json:"value"`
}

type edgeJSON struct {
	ID                 string  `json:"id,omitempty"`
	From               string  `json:"from"`
	To                 string  `json:"to"`
	FromHandle         string  `json:"from_handle,omitempty"`
	ToHandle           string  `json:"to_handle,omitempty"`
	ResistanceMilliOhm float64 `json:"resistance_milliohm,omitempty"`
}

// WriteDesign encodes a design as JSON and writes it to w.
// The output includes every node, edge, embedded subsystem design and the
// design-level scenario and margins, and can be re-imported with
// [ReadDesign] for round-trip processing.
func WriteDesign(d *design.Design, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(marshalDesign(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportDesign writes a design to a JSON file at path.
// This is a convenience wrapper around [WriteDesign] for file-based output.
func ExportDesign(d *design.Design, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDesign(d, f)
}

func marshalDesign(d *design.Design) *designJSON {
	m := d.Margins
	out := &designJSON{
		Name:     d.Name,
		Scenario: string(d.Scenario),
		Margins: &marginsJSON{
			CurrentPct:       &m.CurrentPct,
			PowerPct:         &m.PowerPct,
			VoltageDropPct:   &m.VoltageDropPct,
			VoltageMarginPct: &m.VoltageMarginPct,
		},
		Nodes: make([]nodeJSON, 0, d.NodeCount()),
		Edges: make([]edgeJSON, 0, d.EdgeCount()),
	}
	for _, n := range d.Nodes() {
		out.Nodes = append(out.Nodes, marshalNode(n))
	}
	for _, e := range d.Edges() {
		out.Edges = append(out.Edges, edgeJSON{
			ID:                 e.ID,
			From:               e.From,
			To:                 e.To,
			FromHandle:         e.FromHandle,
			ToHandle:           e.ToHandle,
			ResistanceMilliOhm: e.ResistanceMilliOhm,
		})
	}
	return out
}

func marshalNode(n *design.Node) nodeJSON {
	out := nodeJSON{ID: n.ID, Name: n.Name, Kind: n.Kind().String()}
	switch p := n.Params.(type) {
	case *design.Source:
		out.Source = &sourceJSON{
			Vout:       p.Vout,
			IoutMax:    p.IoutMax,
			PoutMax:    p.PoutMax,
			Redundancy: string(p.Redundancy),
			Count:      p.Count,
		}
	case *design.Load:
		out.Load = &loadJSON{
			Vreq:             p.Vreq,
			ITyp:             p.ITyp,
			IMax:             p.IMax,
			IIdle:            p.IIdle,
			UtilTypPct:       p.UtilTypPct,
			UtilMaxPct:       p.UtilMaxPct,
			NumParalleled:    p.NumParalleled,
			Critical:         p.Critical,
			VoltageMarginPct: p.VoltageMarginPct,
		}
	case *design.Converter:
		out.Converter = &converterJSON{
			VinMin:     p.VinMin,
			VinMax:     p.VinMax,
			Vout:       p.Vout,
			IoutMax:    p.IoutMax,
			PoutMax:    p.PoutMax,
			Efficiency: efficiencyToJSON(p.Efficiency),
			PhaseCount: p.PhaseCount,
		}
	case *design.DualConverter:
		dual := &dualJSON{VinMin: p.VinMin, VinMax: p.VinMax}
		for _, b := range p.Outputs {
			dual.Outputs = append(dual.Outputs, branchJSON{
				ID:         b.ID,
				Vout:       b.Vout,
				IoutMax:    b.IoutMax,
				PoutMax:    b.PoutMax,
				Efficiency: efficiencyToJSON(b.Efficiency),
				PhaseCount: b.PhaseCount,
			})
		}
		out.DualConverter = dual
	case *design.Bus:
		out.Bus = &busJSON{VBus: p.VBus, ResistanceMilliOhm: p.ResistanceMilliOhm}
	case *design.Subsystem:
		sub := &subsystemJSON{
			NumParalleled: p.NumParalleled,
			InputVNom:     p.InputVNom,
		}
		if p.Inner != nil {
			sub.Design = marshalDesign(p.Inner)
		}
		out.Subsystem = sub
	case *design.SubsystemInput:
		out.SubsystemInput = &portJSON{Vout: p.Vout}
	}
	return out
}

func efficiencyToJSON(m design.Efficiency) *efficiencyJSON {
	if m.Fixed == 0 && m.Basis == "" && len(m.Points) == 0 && !m.PerPhase {
		return nil
	}
	out := &efficiencyJSON{
		Fixed:    m.Fixed,
		Basis:    string(m.Basis),
		PerPhase: m.PerPhase,
	}
	for _, p := range m.Points {
		out.Points = append(out.Points, curvePointJSON{
			LoadPct: p.LoadPct,
			Current: p.Current,
			Value:   p.Value,
		})
	}
	return out
}
