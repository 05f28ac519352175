package design

import "slices"

// Clone returns a deep copy of the design. Node payloads, efficiency curve
// points, pointer-valued fields and embedded subsystem designs are all
// copied, so mutating the clone never touches the original. IDs are
// preserved; analysis results for a clone line up with the source design.
func (d *Design) Clone() *Design {
	if d == nil {
		return nil
	}
	out := New(d.Name)
	out.Scenario = d.Scenario
	out.Margins = d.Margins
	for _, id := range d.order {
		n := d.nodes[id]
		cp := *n
		cp.Params = cloneParams(n.Params)
		out.nodes[cp.ID] = &cp
		out.order = append(out.order, cp.ID)
	}
	out.edges = slices.Clone(d.edges)
	for i, e := range out.edges {
		out.edgeIndex[e.ID] = i
		out.outgoing[e.From] = append(out.outgoing[e.From], i)
		out.incoming[e.To] = append(out.incoming[e.To], i)
	}
	return out
}

func cloneParams(p Params) Params {
	switch v := p.(type) {
	case *Source:
		cp := *v
		return &cp
	case *Load:
		cp := *v
		cp.IIdle = clonePtr(v.IIdle)
		return &cp
	case *Converter:
		cp := *v
		cp.Efficiency = v.Efficiency.clone()
		return &cp
	case *DualConverter:
		cp := *v
		cp.Outputs = make([]OutputBranch, len(v.Outputs))
		for i, b := range v.Outputs {
			cp.Outputs[i] = b
			cp.Outputs[i].Efficiency = b.Efficiency.clone()
		}
		return &cp
	case *Bus:
		cp := *v
		return &cp
	case *Subsystem:
		cp := *v
		cp.InputVNom = clonePtr(v.InputVNom)
		cp.Inner = v.Inner.Clone()
		return &cp
	case *SubsystemInput:
		cp := *v
		return &cp
	}
	return nil
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
