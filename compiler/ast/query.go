package ast

// Query is the root of a parsed BQL query.
type Query struct {
	Kind        string       `json:"kind" unpack:""`
	Select      Select       `json:"select"`
	Stream      Stream       `json:"stream"`
	LateralView *LateralView `json:"lateral_view"`
	Where       Expr         `json:"where"`
	GroupBy     *GroupBy     `json:"group_by"`
	Having      Expr         `json:"having"`
	OrderBy     *OrderBy     `json:"order_by"`
	Window      *Window      `json:"window"`
	Limit       *Limit       `json:"limit"`
	Loc         `json:"loc"`
}

type Select struct {
	Distinct bool         `json:"distinct"`
	Items    []SelectItem `json:"items"`
	Loc      `json:"loc"`
}

// SelectItem is "*" when Star is set and an optionally aliased
// expression otherwise.
type SelectItem struct {
	Star  bool  `json:"star"`
	Expr  Expr  `json:"expr"`
	Alias *Name `json:"alias"`
	Loc   `json:"loc"`
}

// Name is an identifier that is not a field reference, e.g., an alias.
type Name struct {
	Text   string `json:"text"`
	Quoted bool   `json:"quoted"`
	Loc    `json:"loc"`
}

const (
	UnitTime   = "TIME"
	UnitRecord = "RECORD"
)

// Stream is the STREAM source.  Duration is nil for STREAM() and
// STREAM(MAX, ...).
type Stream struct {
	Duration *int64 `json:"duration"`
	Max      bool   `json:"max"`
	Unit     string `json:"unit"`
	Loc      `json:"loc"`
}

// LateralView explodes a list into one alias or a map into a key alias
// and a value alias.
type LateralView struct {
	Outer   bool   `json:"outer"`
	Expr    Expr   `json:"expr"`
	Aliases []Name `json:"aliases"`
	Loc     `json:"loc"`
}

type GroupBy struct {
	Exprs []Expr `json:"exprs"`
	Loc   `json:"loc"`
}

type OrderBy struct {
	Items []SortItem `json:"items"`
	Loc   `json:"loc"`
}

type SortItem struct {
	Expr Expr `json:"expr"`
	Desc bool `json:"desc"`
	Loc  `json:"loc"`
}

const (
	WindowEvery    = "EVERY"
	WindowTumbling = "TUMBLING"

	IncludeAll   = "ALL"
	IncludeFirst = "FIRST"
	IncludeLast  = "LAST"
)

// Window is WINDOWING EVERY(n, unit, include) or TUMBLING(n, unit).
type Window struct {
	Type    string   `json:"type"`
	Every   int64    `json:"every"`
	Unit    string   `json:"unit"`
	Include *Include `json:"include"`
	Loc     `json:"loc"`
}

type Include struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
	Unit  string `json:"unit"`
	Loc   `json:"loc"`
}

type Limit struct {
	Count int64 `json:"count"`
	Loc   `json:"loc"`
}

// SelectExprs returns the expressions of the non-star select items.
func (q *Query) SelectExprs() []Expr {
	var exprs []Expr
	for _, item := range q.Select.Items {
		if !item.Star {
			exprs = append(exprs, item.Expr)
		}
	}
	return exprs
}

// HasGroupBy is true for a GROUP BY clause with at least one expression.
// An empty GROUP BY () is the same as none.
func (q *Query) HasGroupBy() bool {
	return q.GroupBy != nil && len(q.GroupBy.Exprs) > 0
}
