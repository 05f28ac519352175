package designio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

var (
	// ErrUnknownKind is returned by [ReadDesign] when a node's kind string
	// does not name one of the seven node kinds.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrMissingParams is returned by [ReadDesign] when a node declares a
	// kind but carries no parameter block under the matching key.
	ErrMissingParams = errors.New("missing node parameters")
)

// ReadDesign decodes a JSON design from r.
//
// The input must follow the format described in the package documentation.
// ReadDesign returns an error if the JSON is malformed, a node carries an
// unknown kind or lacks its parameter block, an ID is duplicated, an edge
// references an unknown node, or an embedded subsystem design has any of
// these problems. Errors are wrapped with the offending node or edge.
//
// The returned design is independent of r and can be modified freely.
// ReadDesign does not close r.
func ReadDesign(r io.Reader) (*design.Design, error) {
	var data designJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return buildDesign(&data)
}

// ImportDesign reads a JSON design file at path.
//
// It opens the file, decodes it with [ReadDesign], and closes the file.
// Open failures and decode failures are both reported with the path for
// context.
func ImportDesign(path string) (*design.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ReadDesign(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func buildDesign(data *designJSON) (*design.Design, error) {
	d := design.New(data.Name)
	if data.Scenario != "" {
		sc, err := design.ParseScenario(data.Scenario)
		if err != nil {
			return nil, err
		}
		d.Scenario = sc
	}
	if data.Margins != nil {
		applyMargins(&d.Margins, data.Margins)
	}

	for _, n := range data.Nodes {
		params, err := nodeParams(n)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nodeRef(n), err)
		}
		if _, err := d.AddNode(design.Node{ID: n.ID, Name: n.Name, Params: params}); err != nil {
			return nil, fmt.Errorf("node %s: %w", nodeRef(n), err)
		}
	}
	for _, e := range data.Edges {
		edge := design.Edge{
			ID:                 e.ID,
			From:               e.From,
			To:                 e.To,
			FromHandle:         e.FromHandle,
			ToHandle:           e.ToHandle,
			ResistanceMilliOhm: e.ResistanceMilliOhm,
		}
		if _, err := d.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// nodeRef labels a node in error messages: the ID when present, else the
// display name.
func nodeRef(n nodeJSON) string {
	if n.ID != "" {
		return n.ID
	}
	if n.Name != "" {
		return fmt.Sprintf("%q", n.Name)
	}
	return "(unnamed)"
}

func applyMargins(m *design.Margins, j *marginsJSON) {
	if j.CurrentPct != nil {
		m.CurrentPct = *j.CurrentPct
	}
	if j.PowerPct != nil {
		m.PowerPct = *j.PowerPct
	}
	if j.VoltageDropPct != nil {
		m.VoltageDropPct = *j.VoltageDropPct
	}
	if j.VoltageMarginPct != nil {
		m.VoltageMarginPct = *j.VoltageMarginPct
	}
}

// nodeParams converts a wire node into its typed parameter payload. The
// kind string selects which parameter block must be present.
func nodeParams(n nodeJSON) (design.Params, error) {
	switch n.Kind {
	case design.KindSource.String():
		if n.Source == nil {
			return nil, ErrMissingParams
		}
		return &design.Source{
			Vout:       n.Source.Vout,
			IoutMax:    n.Source.IoutMax,
			PoutMax:    n.Source.PoutMax,
			Redundancy: design.Redundancy(n.Source.Redundancy),
			Count:      n.Source.Count,
		}, nil

	case design.KindLoad.String():
		if n.Load == nil {
			return nil, ErrMissingParams
		}
		return &design.Load{
			Vreq:             n.Load.Vreq,
			ITyp:             n.Load.ITyp,
			IMax:             n.Load.IMax,
			IIdle:            n.Load.IIdle,
			UtilTypPct:       n.Load.UtilTypPct,
			UtilMaxPct:       n.Load.UtilMaxPct,
			NumParalleled:    n.Load.NumParalleled,
			Critical:         n.Load.Critical,
			VoltageMarginPct: n.Load.VoltageMarginPct,
		}, nil

	case design.KindConverter.String():
		if n.Converter == nil {
			return nil, ErrMissingParams
		}
		return &design.Converter{
			VinMin:     n.Converter.VinMin,
			VinMax:     n.Converter.VinMax,
			Vout:       n.Converter.Vout,
			IoutMax:    n.Converter.IoutMax,
			PoutMax:    n.Converter.PoutMax,
			Efficiency: efficiencyFromJSON(n.Converter.Efficiency),
			PhaseCount: n.Converter.PhaseCount,
		}, nil

	case design.KindDualConverter.String():
		if n.DualConverter == nil {
			return nil, ErrMissingParams
		}
		dc := &design.DualConverter{
			VinMin: n.DualConverter.VinMin,
			VinMax: n.DualConverter.VinMax,
		}
		for _, b := range n.DualConverter.Outputs {
			dc.Outputs = append(dc.Outputs, design.OutputBranch{
				ID:         b.ID,
				Vout:       b.Vout,
				IoutMax:    b.IoutMax,
				PoutMax:    b.PoutMax,
				Efficiency: efficiencyFromJSON(b.Efficiency),
				PhaseCount: b.PhaseCount,
			})
		}
		return dc, nil

	case design.KindBus.String():
		if n.Bus == nil {
			return nil, ErrMissingParams
		}
		return &design.Bus{
			VBus:               n.Bus.VBus,
			ResistanceMilliOhm: n.Bus.ResistanceMilliOhm,
		}, nil

	case design.KindSubsystem.String():
		if n.Subsystem == nil {
			return nil, ErrMissingParams
		}
		sub := &design.Subsystem{
			NumParalleled: n.Subsystem.NumParalleled,
			InputVNom:     n.Subsystem.InputVNom,
		}
		if n.Subsystem.Design != nil {
			inner, err := buildDesign(n.Subsystem.Design)
			if err != nil {
				return nil, fmt.Errorf("embedded design: %w", err)
			}
			sub.Inner = inner
		}
		return sub, nil

	case design.KindSubsystemInput.String():
		if n.SubsystemInput == nil {
			return nil, ErrMissingParams
		}
		return &design.SubsystemInput{Vout: n.SubsystemInput.Vout}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
}

func efficiencyFromJSON(e *efficiencyJSON) design.Efficiency {
	if e == nil {
		return design.Efficiency{}
	}
	m := design.Efficiency{
		Fixed:    e.Fixed,
		Basis:    design.Basis(e.Basis),
		PerPhase: e.PerPhase,
	}
	for _, p := range e.Points {
		m.Points = append(m.Points, design.CurvePoint{
			LoadPct: p.LoadPct,
			Current: p.Current,
			Value:   p.Value,
		})
	}
	return m
}
