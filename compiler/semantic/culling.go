package semantic

import (
	"slices"

	"github.com/bullet-db/bql/compiler/ir"
)

// culling drops the fields produced only to group, aggregate or order
// on: unselected group keys and aggregates and transient ORDER BY keys.
func (p *Processed) culling() *ir.Culling {
	var names []string
	add := func(name string) {
		if !slices.Contains(names, name) && !p.selected(name) {
			names = append(names, name)
		}
	}
	for _, k := range p.Keys {
		if !k.Selected {
			add(k.Name)
		}
	}
	for _, agg := range p.Aggregates {
		if !agg.Selected {
			add(agg.Name)
		}
	}
	for _, key := range p.OrderBy {
		if key.Transient {
			add(key.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return &ir.Culling{Kind: "Culling", TransientFields: names}
}

func (p *Processed) selected(name string) bool {
	for _, it := range p.Items {
		if it.Expr != nil && it.Name == name {
			return true
		}
	}
	return false
}
