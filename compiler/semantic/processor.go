package semantic

import (
	"errors"

	"github.com/bullet-db/bql"
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/ir"
	"github.com/bullet-db/bql/compiler/sfmt"
	"github.com/bullet-db/bql/schema"
)

// processor makes the one pass over a classified query that types every
// expression and fills in the Processed view the extractors read.
type processor struct {
	checker
	out *Processed
}

func process(q *ast.Query, s shape, base schema.Layered) (*Processed, errlist) {
	p := &processor{
		checker: checker{types: make(map[int]bql.Type), input: base},
		out: &Processed{
			Query:     q,
			Type:      s.typ,
			SpecialK:  s.specialK,
			Threshold: s.threshold,
		},
	}
	p.stream(q.Stream)
	p.window(q.Window)
	if q.Limit != nil {
		n := q.Limit.Count
		p.out.Limit = &n
	}
	if q.LateralView != nil {
		p.lateralView(q.LateralView)
	}
	if q.Where != nil {
		p.where(q.Where)
	}
	p.items(q.Select.Items)
	switch s.typ {
	case Select, SelectAll:
		p.raw()
	case SelectDistinct:
		p.distinct()
	case Group:
		p.group()
	case TopK:
		if s.specialK {
			p.group()
		} else {
			p.nonGroup()
		}
	case CountDistinct, Distribution:
		p.nonGroup()
	default:
		panic(s.typ)
	}
	p.out.types = p.types
	return p.out, p.errs
}

func (p *processor) stream(s ast.Stream) {
	switch {
	case s.Unit == ast.UnitRecord:
		p.error(s, errors.New("STREAM duration in RECORD is not supported yet."))
	case s.Duration != nil:
		p.out.Duration = *s.Duration
	default:
		p.out.Duration = ir.MaxDuration
	}
}

func (p *processor) window(w *ast.Window) {
	if w == nil {
		return
	}
	if w.Every <= 0 {
		p.error(w, errors.New("The window emit size must be positive."))
	}
	if inc := w.Include; inc != nil {
		switch inc.Type {
		case ast.IncludeLast:
			p.error(inc, errors.New("WINDOWING with LAST include is not supported yet."))
		case ast.IncludeFirst:
			if inc.Count <= 0 {
				p.error(inc, errors.New("The window include size must be positive."))
			}
		}
	}
}

// lateralView types the exploded expression and layers the names it
// binds over the input view.
func (p *processor) lateralView(lv *ast.LateralView) {
	p.aggErr = "LATERAL VIEW cannot contain aggregates."
	typ := p.expr(p.input, lv.Expr)
	p.aggErr = ""
	var fields []schema.Field
	switch {
	case typ.IsAbsent():
		for _, alias := range lv.Aliases {
			fields = append(fields, schema.Field{Name: alias.Text, Type: bql.Unknown})
		}
	case typ.IsList():
		if len(lv.Aliases) != 1 {
			p.errorf(lv, "Exploding the list %s requires exactly one alias.", display(lv.Expr))
			return
		}
		fields = []schema.Field{{Name: lv.Aliases[0].Text, Type: typ.Sub()}}
	case typ.IsMap():
		if len(lv.Aliases) != 2 {
			p.errorf(lv, "Exploding the map %s requires a key alias and a value alias.", display(lv.Expr))
			return
		}
		fields = []schema.Field{
			{Name: lv.Aliases[0].Text, Type: bql.String},
			{Name: lv.Aliases[1].Text, Type: typ.Sub()},
		}
	default:
		p.errorf(lv.Expr, "The argument %s of EXPLODE must be a list or map. Type given: %s", display(lv.Expr), typ)
		return
	}
	p.input = p.input.With(fields...)
}

func (p *processor) where(e ast.Expr) {
	p.aggErr = "WHERE clause cannot contain aggregates."
	typ := p.expr(p.input, e)
	p.aggErr = ""
	if !typ.IsAbsent() && typ != bql.Boolean {
		p.errorf(e, "WHERE clause must evaluate to a boolean. Type given: %s", typ)
	}
}

// items names the select items.  Two items may share a name only when
// they are the same expression.
func (p *processor) items(items []ast.SelectItem) {
	named := make(map[string]*Item)
	for _, item := range items {
		it := &Item{Expr: item.Expr, Loc: item.Loc, category: categorize(item)}
		switch {
		case item.Star:
			it.Name = "*"
		case item.Alias != nil:
			it.Name, it.Alias = item.Alias.Text, true
		default:
			it.Name = sfmt.RawExpr(item.Expr)
		}
		if prev, ok := named[it.Name]; ok && it.Expr != nil && prev.Expr != nil && sfmt.RawExpr(prev.Expr) != sfmt.RawExpr(it.Expr) {
			p.errorf(item.Loc, "The name %s is given to more than one select item.", it.Name)
		}
		named[it.Name] = it
		p.out.Items = append(p.out.Items, it)
	}
}

// raw handles SELECT and SELECT *.  ORDER BY keys not found among the
// select items are projected and culled afterward, except that SELECT *
// can order on record fields directly.
func (p *processor) raw() {
	for _, it := range p.out.Items {
		if it.Expr != nil {
			p.expr(p.input, it.Expr)
		}
	}
	p.orderBy(func(o ast.SortItem, key *SortKey) {
		p.aggErr = "ORDER BY clause cannot contain aggregates."
		p.expr(p.input, o.Expr)
		p.aggErr = ""
		if f := ast.Unparen(o.Expr); p.out.Type == SelectAll && ast.IsField(f) {
			key.Name = sfmt.RawExpr(f)
			return
		}
		key.Transient, key.Computed = true, true
	})
}

// distinct groups on every select item with no operations.
func (p *processor) distinct() {
	for _, it := range p.out.Items {
		p.expr(p.input, it.Expr)
		p.out.Keys = append(p.out.Keys, &Key{
			Expr:     it.Expr,
			Text:     sfmt.RawExpr(it.Expr),
			Field:    p.out.addInput(it.Expr),
			Name:     it.Name,
			Selected: true,
		})
		it.GroupKey = true
	}
	p.orderBy(p.outputField)
}

// group handles GROUP queries and the special K form of them.  Group keys
// and aggregates read the input.  Anything else is a computation over
// the group output.
func (p *processor) group() {
	if p.out.Query.HasGroupBy() {
		p.aggErr = "GROUP BY clause cannot contain aggregates."
		for _, e := range p.out.Query.GroupBy.Exprs {
			p.expr(p.input, e)
			text := sfmt.RawExpr(e)
			if p.out.key(text) != nil {
				continue
			}
			p.out.Keys = append(p.out.Keys, &Key{Expr: e, Text: text, Field: p.out.addInput(e), Name: text})
		}
		p.aggErr = ""
	}
	var outputs []schema.Field
	names := make(map[string]bool)
	supers := make(map[string]string)
	for _, it := range p.out.Items {
		text := sfmt.RawExpr(it.Expr)
		if k := p.out.key(text); k != nil {
			// Another name for a selected key is computed from it.
			if k.Selected && k.Name != it.Name {
				continue
			}
			it.GroupKey = true
			k.Name, k.Selected = it.Name, true
		} else if _, ok := ast.Unparen(it.Expr).(*ast.GroupOpExpr); ok {
			if name, ok := supers[text]; ok && name != it.Name {
				continue
			}
			supers[text] = it.Name
			it.Super = true
		} else {
			continue
		}
		outputs = append(outputs, schema.Field{Name: it.Name, Type: p.expr(p.input, it.Expr)})
		names[it.Name] = true
	}
	for _, k := range p.out.Keys {
		if k.Selected {
			continue
		}
		if names[k.Name] {
			p.errorf(k.Expr, "The GROUP BY field %s has the same name as a select item.", display(k.Expr))
		}
		outputs = append(outputs, schema.Field{Name: k.Name, Type: p.types[k.Expr.Occ()]})
	}
	for _, it := range p.out.Items {
		if it.Super {
			p.addAggregate(ast.Unparen(it.Expr).(*ast.GroupOpExpr), it.Name, true)
		}
	}
	view := p.input.With(outputs...)
	for _, it := range p.out.Items {
		if it.Super || it.GroupKey {
			continue
		}
		p.expr(view, it.Expr)
		if bad := p.ungrouped(it.Expr, names); bad != nil {
			p.errorf(bad, "%s is not an aggregate or group by expression.", display(bad))
			continue
		}
		ast.Walk(it.Expr, func(e ast.Expr) bool {
			if agg, ok := e.(*ast.GroupOpExpr); ok {
				p.addAggregate(agg, sfmt.RawExpr(agg), false)
				return false
			}
			return true
		})
	}
	if p.out.SpecialK {
		p.specialK()
		return
	}
	p.orderBy(func(o ast.SortItem, key *SortKey) {
		if k := p.out.key(sfmt.RawExpr(ast.Unparen(o.Expr))); k != nil {
			key.Name = k.Name
			return
		}
		p.errorf(o.Expr, "%s is not an aggregate or group by expression.", display(o.Expr))
	})
}

// specialK names the output of the selected COUNT(*) a top K is ordered by.
func (p *processor) specialK() {
	count := p.out.aggregate("COUNT(*)")
	if h := p.out.Query.Having; h != nil {
		p.expr(p.input, h)
	}
	for _, o := range p.out.Query.OrderBy.Items {
		p.out.OrderBy = append(p.out.OrderBy, &SortKey{Expr: o.Expr, Desc: o.Desc, Loc: o.Loc, Name: count.Name})
	}
}

func (p *processor) addAggregate(e *ast.GroupOpExpr, name string, selected bool) {
	text := sfmt.RawExpr(e)
	if p.out.aggregate(text) != nil {
		return
	}
	agg := &Aggregate{Op: e.Op, Expr: e, Text: text, Name: name, Selected: selected}
	if !e.Star && len(e.Args) == 1 {
		agg.Field = p.out.addInput(e.Args[0])
	}
	p.out.Aggregates = append(p.out.Aggregates, agg)
}

// ungrouped returns the first part of e that is neither computed from
// group keys and aggregates nor a reference to a named group output.
func (p *processor) ungrouped(e ast.Expr, names map[string]bool) ast.Expr {
	if p.out.key(sfmt.RawExpr(e)) != nil || ast.IsAggregate(e) || isA[*ast.LiteralExpr](e) {
		return nil
	}
	if f, ok := e.(*ast.FieldExpr); ok {
		if names[f.Name] {
			return nil
		}
		return e
	}
	for _, child := range ast.Children(e) {
		if bad := p.ungrouped(child, names); bad != nil {
			return bad
		}
	}
	return nil
}

// nonGroup handles the single COUNT(DISTINCT), distribution or TOP item
// and any computations over its output.
func (p *processor) nonGroup() {
	var agg *Item
	for _, it := range p.out.Items {
		if it.category.exclusive() {
			agg = it
			break
		}
	}
	agg.Super = true
	p.out.aggItem = agg
	p.top = ast.Unparen(agg.Expr)
	typ := p.expr(p.input, agg.Expr)
	var outputs []schema.Field
	switch e := p.top.(type) {
	case *ast.CountDistinctExpr:
		p.addKeys(e.Args)
		outputs = append(outputs, schema.Field{Name: agg.Name, Type: typ})
	case *ast.DistributionExpr:
		p.addKeys([]ast.Expr{e.Expr})
		outputs = distributionOutputs(distributionType(e.Op))
	case *ast.TopKExpr:
		p.addKeys(e.Args)
		for _, k := range p.out.Keys {
			outputs = append(outputs, schema.Field{Name: k.Name, Type: p.types[k.Expr.Occ()]})
		}
		outputs = append(outputs, schema.Field{Name: agg.Name, Type: typ})
		p.out.Threshold = e.Threshold
	default:
		panic(e)
	}
	p.top = nil
	view := p.input.With(outputs...)
	for _, it := range p.out.Items {
		if it != agg {
			p.expr(view, it.Expr)
		}
	}
	if p.out.Type != TopK {
		p.orderBy(p.outputField)
		return
	}
	p.orderBy(func(o ast.SortItem, key *SortKey) {
		p.aggErr = "ORDER BY clause cannot contain aggregates."
		p.expr(view, o.Expr)
		p.aggErr = ""
		if f := ast.Unparen(o.Expr); ast.IsField(f) {
			key.Name = sfmt.RawExpr(f)
			return
		}
		key.Transient, key.Computed = true, true
	})
}

func (p *processor) addKeys(exprs []ast.Expr) {
	for _, e := range exprs {
		field := p.out.addInput(e)
		p.out.Keys = append(p.out.Keys, &Key{
			Expr:     e,
			Text:     sfmt.RawExpr(e),
			Field:    field,
			Name:     field,
			Selected: true,
		})
	}
}

// orderBy resolves each ORDER BY key to a select item or, failing that,
// hands it to unresolved, which may name it or report it.
func (p *processor) orderBy(unresolved func(ast.SortItem, *SortKey)) {
	if p.out.Query.OrderBy == nil {
		return
	}
	for _, o := range p.out.Query.OrderBy.Items {
		key := &SortKey{Expr: o.Expr, Desc: o.Desc, Loc: o.Loc, Name: sfmt.RawExpr(o.Expr)}
		if it := p.out.resolve(o.Expr); it != nil {
			key.Name = it.Name
		} else {
			unresolved(o, key)
		}
		p.out.OrderBy = append(p.out.OrderBy, key)
	}
}

// outputField names an unresolved key by the field of the aggregation
// output it refers to.
func (p *processor) outputField(o ast.SortItem, key *SortKey) {
	key.Name = sfmt.RawExpr(ast.Unparen(o.Expr))
}
