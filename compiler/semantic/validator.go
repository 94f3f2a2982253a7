package semantic

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/ir"
)

// validate checks the assembled query for combinations that no single
// extractor can see.  It reports every violation it finds.
func validate(q *ir.Query, p *Processed) errlist {
	var errs errlist
	var comp *ir.Computation
	var order *ir.OrderBy
	var cull *ir.Culling
	for _, post := range q.PostAggregations {
		switch post := post.(type) {
		case *ir.Computation:
			comp = post
		case *ir.OrderBy:
			order = post
		case *ir.Culling:
			cull = post
		}
	}
	_, raw := q.Aggregation.(*ir.Raw)
	if raw && q.Projection.Type == ir.PassThrough {
		if comp != nil {
			errs.error(p.Query, errors.New("A RAW query with a pass-through projection cannot have a COMPUTATION."))
		}
		if cull != nil {
			errs.error(p.Query, errors.New("A RAW query with a pass-through projection cannot have a CULLING."))
		}
	}
	// A raw query that copies its records may order on any record field.
	if order != nil && !(raw && q.Projection.Type != ir.NoCopy) {
		have := outputs(q, comp)
		for k, f := range order.Fields {
			if slices.Contains(have, f.Field) {
				continue
			}
			var loc ast.Node = p.Query
			if k < len(p.OrderBy) {
				loc = p.OrderBy[k].Loc
			}
			errs.error(loc, fmt.Errorf("ORDER BY contains a non-existent field: %s", f.Field))
		}
	}
	if cull != nil && !(raw && q.Projection.Type == ir.PassThrough) {
		have := outputs(q, comp)
		for _, name := range cull.TransientFields {
			if !slices.Contains(have, name) {
				errs.error(p.Query, fmt.Errorf("CULLING contains a non-existent field: %s", name))
			}
		}
	}
	if top, ok := q.Aggregation.(*ir.TopK); ok && p.Query.Limit != nil && p.Query.Limit.Count != top.Size {
		errs.error(p.Query.Limit, errors.New("LIMIT must be same as the k of TopK aggregation."))
	}
	if emit := q.Window.Emit; emit != nil && emit.Type == ir.UnitRecord && !raw {
		var loc ast.Node = p.Query
		if p.Query.Window != nil {
			loc = p.Query.Window
		}
		errs.error(loc, errors.New("RECORD windows are only supported for RAW queries."))
	}
	return errs
}

// outputs lists the fields a query produces before culling.
func outputs(q *ir.Query, comp *ir.Computation) []string {
	var names []string
	switch agg := q.Aggregation.(type) {
	case *ir.Raw:
		names = ir.FieldNames(q.Projection.Fields)
	case *ir.Group:
		for _, f := range agg.Fields {
			names = append(names, f.Name)
		}
		for _, op := range agg.Operations {
			names = append(names, op.Name)
		}
	case *ir.CountDistinct:
		names = append(names, agg.Name)
	case *ir.Distribution:
		for _, f := range distributionOutputs(agg.DistributionType) {
			names = append(names, f.Name)
		}
	case *ir.TopK:
		for _, f := range agg.Fields {
			names = append(names, f.Name)
		}
		names = append(names, agg.Name)
	}
	if comp != nil {
		names = append(names, ir.FieldNames(comp.Fields)...)
	}
	return names
}
