package semantic

import "github.com/bullet-db/bql/compiler/ir"

// orderBy sorts the output on the resolved ORDER BY keys.  A special K
// is already ordered by its count.
func (p *Processed) orderBy() *ir.OrderBy {
	if len(p.OrderBy) == 0 || p.SpecialK {
		return nil
	}
	var fields []ir.SortField
	for _, key := range p.OrderBy {
		dir := ir.Asc
		if key.Desc {
			dir = ir.Desc
		}
		fields = append(fields, ir.SortField{Field: key.Name, Direction: dir})
	}
	return &ir.OrderBy{Kind: "OrderBy", Fields: fields}
}
