package semantic

import "github.com/bullet-db/bql/compiler/ir"

// computation evaluates the select items and ORDER BY keys that are
// expressions over the aggregation output.  Raw queries compute them in
// the projection instead.  A special K computes only a second name for
// one of its keys.
func (p *Processed) computation() *ir.Computation {
	var fields []ir.Field
	switch {
	case p.Type == Group || p.SpecialK:
		for _, it := range p.Items {
			if !it.Super && !it.GroupKey {
				fields = append(fields, ir.Field{Name: it.Name, Value: p.lower(it.Expr, p.groupSubst)})
			}
		}
	case p.Type == CountDistinct || p.Type == Distribution || p.Type == TopK:
		for _, it := range p.Items {
			if it != p.aggItem {
				fields = append(fields, ir.Field{Name: it.Name, Value: p.lower(it.Expr, nil)})
			}
		}
		for _, key := range p.OrderBy {
			if key.Computed && !hasField(fields, key.Name) {
				fields = append(fields, ir.Field{Name: key.Name, Value: p.lower(key.Expr, nil)})
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ir.Computation{Kind: "Computation", Fields: fields}
}

func hasField(fields []ir.Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
