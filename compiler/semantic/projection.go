package semantic

import "github.com/bullet-db/bql/compiler/ir"

// projection selects the fields of each record that reach the
// aggregation.  A raw query projects its select items and any ORDER BY
// keys it must compute.  Other queries pass records through, copying in
// the computed fields their aggregation reads.
func (p *Processed) projection() ir.Projection {
	var fields []ir.Field
	add := func(name string, value ir.Field) {
		for _, f := range fields {
			if f.Name == name {
				return
			}
		}
		fields = append(fields, value)
	}
	switch p.Type {
	case Select, SelectAll:
		for _, it := range p.Items {
			if it.Expr != nil {
				add(it.Name, ir.Field{Name: it.Name, Value: p.lower(it.Expr, nil)})
			}
		}
		for _, key := range p.OrderBy {
			if key.Computed {
				add(key.Name, ir.Field{Name: key.Name, Value: p.lower(key.Expr, nil)})
			}
		}
		if p.Type == Select {
			return ir.Projection{Type: ir.NoCopy, Fields: fields}
		}
	default:
		for _, in := range p.Inputs {
			add(in.Name, ir.Field{Name: in.Name, Value: p.lower(in.Expr, nil)})
		}
	}
	if len(fields) == 0 {
		return ir.Projection{Type: ir.PassThrough}
	}
	return ir.Projection{Type: ir.Copy, Fields: fields}
}
