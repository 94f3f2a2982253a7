package semantic

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/sfmt"
)

// QueryType is the shape a query is classified into.  Each shape lowers
// to a different aggregation.
type QueryType string

const (
	Select         QueryType = "SELECT"
	SelectAll      QueryType = "SELECT_ALL"
	SelectDistinct QueryType = "SELECT_DISTINCT"
	Group          QueryType = "GROUP"
	CountDistinct  QueryType = "COUNT_DISTINCT"
	Distribution   QueryType = "DISTRIBUTION"
	TopK           QueryType = "TOP_K"
)

// IsAggregate is true for every shape but SELECT and SELECT_ALL.
func (t QueryType) IsAggregate() bool {
	return t != Select && t != SelectAll
}

// category is what a single select item contributes to the shape.
type category int

const (
	catStar category = iota
	catField
	catComputation
	catGroup
	catCountDistinct
	catDistribution
	catTopK
)

func (c category) label() string {
	switch c {
	case catStar:
		return "SELECT *"
	case catCountDistinct:
		return "COUNT DISTINCT"
	case catDistribution:
		return "DISTRIBUTION"
	case catTopK:
		return "TOP K"
	}
	return ""
}

// exclusive categories must be the only non-computation item.
func (c category) exclusive() bool {
	return c == catStar || c == catCountDistinct || c == catDistribution || c == catTopK
}

func categorize(item ast.SelectItem) category {
	if item.Star {
		return catStar
	}
	switch e := ast.Unparen(item.Expr); {
	case isA[*ast.CountDistinctExpr](e):
		return catCountDistinct
	case isA[*ast.DistributionExpr](e):
		return catDistribution
	case isA[*ast.TopKExpr](e):
		return catTopK
	case ast.ContainsAggregate(e):
		return catGroup
	case ast.IsField(e):
		return catField
	}
	return catComputation
}

func isA[T ast.Expr](e ast.Expr) bool {
	_, ok := e.(T)
	return ok
}

// shape is the verdict of the classifier.  specialK marks a GROUP query
// rewritten as TOP_K, in which case threshold holds any HAVING bound.
type shape struct {
	typ       QueryType
	specialK  bool
	threshold *int64
}

// classify assigns q exactly one QueryType or returns the first rule it
// breaks.  It looks only at the shape of the query, never at types.
func classify(q *ast.Query) (shape, *errloc) {
	items := q.Select.Items
	cats := make([]category, len(items))
	lead := -1
	has := make(map[category]bool)
	for k, item := range items {
		cats[k] = categorize(item)
		has[cats[k]] = true
		if lead < 0 && cats[k].exclusive() {
			lead = k
		}
	}
	if lead >= 0 {
		for k, c := range cats {
			if k != lead && c != catComputation {
				err := fmt.Errorf("%s cannot run with other non-computation selectItems", cats[lead].label())
				return shape{}, &errloc{items[k].Loc, err}
			}
		}
		if q.HasGroupBy() {
			return shape{}, &errloc{q.GroupBy.Loc, errors.New("NonGroup aggregation cannot be followed by GROUP BY")}
		}
	}
	aggregated := has[catGroup] || has[catCountDistinct] || has[catDistribution] || has[catTopK]
	if q.Select.Distinct && (has[catStar] || aggregated || q.HasGroupBy()) {
		return shape{}, &errloc{q.Select.Loc, errors.New("SELECT DISTINCT cannot be combined with * or aggregates or GROUP BY")}
	}
	var s shape
	switch {
	case lead >= 0:
		s.typ = map[category]QueryType{
			catStar:          SelectAll,
			catCountDistinct: CountDistinct,
			catDistribution:  Distribution,
			catTopK:          TopK,
		}[cats[lead]]
	case has[catGroup] || q.HasGroupBy():
		s.typ = Group
		counts, ok := specialK(q)
		if ok {
			if len(counts) > 1 {
				return shape{}, &errloc{counts[1], errors.New("For Top K, there can only be one COUNT(*)")}
			}
			s.typ, s.specialK = TopK, true
			if q.Having != nil {
				n, _ := havingThreshold(q.Having)
				s.threshold = &n
			}
		}
	case q.Select.Distinct:
		s.typ = SelectDistinct
	default:
		s.typ = Select
	}
	if q.Having != nil && !s.specialK {
		return shape{}, &errloc{q.Having, errors.New("HAVING is only supported for TOP K")}
	}
	if q.OrderBy != nil && s.typ.IsAggregate() && s.typ != TopK {
		for _, item := range q.OrderBy.Items {
			if !ast.IsField(ast.Unparen(item.Expr)) {
				return shape{}, &errloc{item.Loc, errors.New("Only order by fields supported")}
			}
		}
	}
	return s, nil
}

// specialK reports whether a grouped query is really a top K, i.e.,
//
//	SELECT a, b, COUNT(*) FROM STREAM() GROUP BY a, b
//	ORDER BY COUNT(*) DESC LIMIT 10
//
// optionally with HAVING COUNT(*) >= n.  At least one COUNT(*) must be
// selected.  It returns the COUNT(*) select items so the caller can reject
// duplicates.
func specialK(q *ast.Query) ([]ast.Node, bool) {
	if !q.HasGroupBy() || q.Limit == nil || q.OrderBy == nil || len(q.OrderBy.Items) != 1 {
		return nil, false
	}
	if q.Having != nil {
		if _, ok := havingThreshold(q.Having); !ok {
			return nil, false
		}
	}
	keys := make(map[string]bool)
	for _, e := range q.GroupBy.Exprs {
		keys[sfmt.RawExpr(e)] = true
	}
	var counts []ast.Node
	aliases := make(map[string]bool)
	for _, item := range q.Select.Items {
		if item.Star {
			return nil, false
		}
		if isCountStar(item.Expr) {
			counts = append(counts, item.Loc)
			if item.Alias != nil {
				aliases[item.Alias.Text] = true
			}
			continue
		}
		if !keys[sfmt.RawExpr(item.Expr)] {
			return nil, false
		}
	}
	if len(counts) == 0 {
		return nil, false
	}
	order := q.OrderBy.Items[0]
	if !order.Desc {
		return nil, false
	}
	if !isCountStar(order.Expr) {
		f, ok := ast.Unparen(order.Expr).(*ast.FieldExpr)
		if !ok || !aliases[f.Name] {
			return nil, false
		}
	}
	return counts, true
}

func isCountStar(e ast.Expr) bool {
	g, ok := ast.Unparen(e).(*ast.GroupOpExpr)
	return ok && g.Op == "COUNT" && g.Star
}

// havingThreshold matches HAVING COUNT(*) >= n.
func havingThreshold(e ast.Expr) (int64, bool) {
	b, ok := ast.Unparen(e).(*ast.BinaryExpr)
	if !ok || b.Op != ">=" || !isCountStar(b.LHS) {
		return 0, false
	}
	lit, ok := ast.Unparen(b.RHS).(*ast.LiteralExpr)
	if !ok || (lit.Type != ast.LiteralInteger && lit.Type != ast.LiteralLong) {
		return 0, false
	}
	n, err := strconv.ParseInt(lit.Text, 10, 64)
	return n, err == nil
}
