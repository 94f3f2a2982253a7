package semantic

import "github.com/bullet-db/bql/compiler/ir"

// window is empty when the query has no WINDOWING clause.
func (p *Processed) window() ir.Window {
	w := p.Query.Window
	if w == nil {
		return ir.Window{}
	}
	out := ir.Window{Emit: &ir.Emit{Type: w.Unit, Every: w.Every}}
	if inc := w.Include; inc != nil {
		out.Include = &ir.Include{Type: inc.Type, Count: inc.Count, Unit: inc.Unit}
	}
	return out
}

func (p *Processed) tableFunction() *ir.LateralView {
	lv := p.Query.LateralView
	if lv == nil {
		return nil
	}
	out := &ir.LateralView{Outer: lv.Outer, Value: p.lower(lv.Expr, nil)}
	for _, alias := range lv.Aliases {
		out.Aliases = append(out.Aliases, alias.Text)
	}
	return out
}
