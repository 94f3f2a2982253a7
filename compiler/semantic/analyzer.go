package semantic

import (
	"fmt"

	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/parser"
	"github.com/bullet-db/bql/schema"
)

// Analyze classifies, type checks and lowers a parsed query to IR.  Base
// may be nil, in which case every field has UNKNOWN type.  Errors are
// bound to the parse's source files and returned as a srcfiles.ErrorList.
//
// Classification stops at the first problem.  Type checking and
// validation report everything they find.
func Analyze(p *parser.AST, base *schema.Schema) (q *ir.Query, err error) {
	defer func() {
		if r := recover(); r != nil {
			q, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()
	files := p.Files()
	r := reporter{files}
	query := p.Parsed()
	s, errl := classify(query)
	if errl != nil {
		errlist{*errl}.flushErrs(r)
		return nil, files.Error()
	}
	processed, errs := process(query, s, schema.NewLayered(base))
	if len(errs) > 0 {
		errs.flushErrs(r)
		return nil, files.Error()
	}
	out := processed.build()
	if errs := validate(out, processed); len(errs) > 0 {
		errs.flushErrs(r)
		return nil, files.Error()
	}
	return out, nil
}

// build runs the extractors and assembles their fragments.
func (p *Processed) build() *ir.Query {
	q := &ir.Query{
		Projection:    p.projection(),
		Aggregation:   p.aggregation(),
		Window:        p.window(),
		Duration:      p.Duration,
		TableFunction: p.tableFunction(),
	}
	if p.Query.Where != nil {
		q.Filter = p.lower(p.Query.Where, nil)
	}
	if c := p.computation(); c != nil {
		q.PostAggregations = append(q.PostAggregations, c)
	}
	if o := p.orderBy(); o != nil {
		q.PostAggregations = append(q.PostAggregations, o)
	}
	if c := p.culling(); c != nil {
		q.PostAggregations = append(q.PostAggregations, c)
	}
	return q
}

// Classify returns the shape of a query without type checking it.
func Classify(q *ast.Query) (QueryType, error) {
	s, errl := classify(q)
	if errl != nil {
		return "", errl.err
	}
	return s.typ, nil
}
