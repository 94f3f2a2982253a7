package ast

type Expr interface {
	Node
	Occ() int
	exprNode()
}

// Literal types as determined by the parser from a literal's spelling.
// An integer literal too large for a LONG has an empty type.
const (
	LiteralBoolean = "BOOLEAN"
	LiteralInteger = "INTEGER"
	LiteralLong    = "LONG"
	LiteralFloat   = "FLOAT"
	LiteralDouble  = "DOUBLE"
	LiteralString  = "STRING"
	LiteralNull    = "NULL"
)

type (
	BetweenExpr struct {
		Kind  string `json:"kind" unpack:""`
		Not   bool   `json:"not"`
		Expr  Expr   `json:"expr"`
		Lower Expr   `json:"lower"`
		Upper Expr   `json:"upper"`
		Occurrence
		Loc `json:"loc"`
	}
	// A BinaryExpr is any expression of the form "lhs op rhs" including
	// arithmetic, comparison, logical operators, RLIKE and IN, as well as
	// the two-argument functions (SIZEIS, CONTAINSKEY, CONTAINSVALUE,
	// FILTER), which have no infix spelling.
	BinaryExpr struct {
		Kind string `json:"kind" unpack:""`
		Op   string `json:"op"`
		LHS  Expr   `json:"lhs"`
		RHS  Expr   `json:"rhs"`
		Occurrence
		Loc `json:"loc"`
	}
	CastExpr struct {
		Kind string `json:"kind" unpack:""`
		Expr Expr   `json:"expr"`
		Type string `json:"type"`
		Occurrence
		Loc `json:"loc"`
	}
	// CountDistinctExpr is COUNT(DISTINCT a, b, ...).
	CountDistinctExpr struct {
		Kind string `json:"kind" unpack:""`
		Args []Expr `json:"args"`
		Occurrence
		Loc `json:"loc"`
	}
	// DistributionExpr is one of QUANTILE, FREQ or CUMFREQ over Expr with
	// the points given in one of three modes.  LINEAR uses NumPoints,
	// REGION uses RangeStart, RangeEnd and Increment, and MANUAL uses Points.
	DistributionExpr struct {
		Kind       string    `json:"kind" unpack:""`
		Op         string    `json:"op"`
		Expr       Expr      `json:"expr"`
		Mode       string    `json:"mode"`
		NumPoints  int64     `json:"num_points"`
		RangeStart float64   `json:"start"`
		RangeEnd   float64   `json:"end"`
		Increment  float64   `json:"increment"`
		Points     []float64 `json:"points"`
		Occurrence
		Loc `json:"loc"`
	}
	FieldExpr struct {
		Kind   string `json:"kind" unpack:""`
		Name   string `json:"name"`
		Quoted bool   `json:"quoted"`
		Occurrence
		Loc `json:"loc"`
	}
	// GroupOpExpr is an aggregate function: COUNT, SUM, MIN, MAX or AVG.
	// Star is set for COUNT(*).  The parser accepts any number of
	// arguments and DISTINCT for all of them so the semantic pass can
	// report misuse.
	GroupOpExpr struct {
		Kind     string `json:"kind" unpack:""`
		Op       string `json:"op"`
		Distinct bool   `json:"distinct"`
		Star     bool   `json:"star"`
		Args     []Expr `json:"args"`
		Occurrence
		Loc `json:"loc"`
	}
	IsNullExpr struct {
		Kind string `json:"kind" unpack:""`
		Expr Expr   `json:"expr"`
		Not  bool   `json:"not"`
		Occurrence
		Loc `json:"loc"`
	}
	ListExpr struct {
		Kind  string `json:"kind" unpack:""`
		Elems []Expr `json:"elems"`
		Occurrence
		Loc `json:"loc"`
	}
	// LiteralExpr holds the text of a literal.  For strings, Text is the
	// unescaped value.  For numbers, it excludes any type suffix.
	LiteralExpr struct {
		Kind string `json:"kind" unpack:""`
		Type string `json:"type"`
		Text string `json:"text"`
		Occurrence
		Loc `json:"loc"`
	}
	// NAryExpr is a function of three or more operands, currently IF.
	NAryExpr struct {
		Kind     string `json:"kind" unpack:""`
		Op       string `json:"op"`
		Operands []Expr `json:"operands"`
		Occurrence
		Loc `json:"loc"`
	}
	ParenExpr struct {
		Kind string `json:"kind" unpack:""`
		Expr Expr   `json:"expr"`
		Occurrence
		Loc `json:"loc"`
	}
	// SubFieldExpr is a list index, a[0], or a map key, a['b'] or a.b.
	// Exactly one of Index and Key is set.
	SubFieldExpr struct {
		Kind  string  `json:"kind" unpack:""`
		Expr  Expr    `json:"expr"`
		Index *int    `json:"index"`
		Key   *string `json:"key"`
		Dot   bool    `json:"dot"`
		Occurrence
		Loc `json:"loc"`
	}
	// TopKExpr is TOP(k [, threshold], a, b, ...).
	TopKExpr struct {
		Kind      string `json:"kind" unpack:""`
		Size      int64  `json:"size"`
		Threshold *int64 `json:"threshold"`
		Args      []Expr `json:"args"`
		Occurrence
		Loc `json:"loc"`
	}
	// UnaryExpr is NOT, negation or a one-argument function such as
	// SIZEOF or TRIM.
	UnaryExpr struct {
		Kind    string `json:"kind" unpack:""`
		Op      string `json:"op"`
		Operand Expr   `json:"operand"`
		Occurrence
		Loc `json:"loc"`
	}
)

func (*BetweenExpr) exprNode()       {}
func (*BinaryExpr) exprNode()        {}
func (*CastExpr) exprNode()          {}
func (*CountDistinctExpr) exprNode() {}
func (*DistributionExpr) exprNode()  {}
func (*FieldExpr) exprNode()         {}
func (*GroupOpExpr) exprNode()       {}
func (*IsNullExpr) exprNode()        {}
func (*ListExpr) exprNode()          {}
func (*LiteralExpr) exprNode()       {}
func (*NAryExpr) exprNode()          {}
func (*ParenExpr) exprNode()         {}
func (*SubFieldExpr) exprNode()      {}
func (*TopKExpr) exprNode()          {}
func (*UnaryExpr) exprNode()         {}

// Children returns the immediate subexpressions of e in source order.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *BetweenExpr:
		return []Expr{e.Expr, e.Lower, e.Upper}
	case *BinaryExpr:
		return []Expr{e.LHS, e.RHS}
	case *CastExpr:
		return []Expr{e.Expr}
	case *CountDistinctExpr:
		return e.Args
	case *DistributionExpr:
		return []Expr{e.Expr}
	case *FieldExpr, *LiteralExpr:
		return nil
	case *GroupOpExpr:
		return e.Args
	case *IsNullExpr:
		return []Expr{e.Expr}
	case *ListExpr:
		return e.Elems
	case *NAryExpr:
		return e.Operands
	case *ParenExpr:
		return []Expr{e.Expr}
	case *SubFieldExpr:
		return []Expr{e.Expr}
	case *TopKExpr:
		return e.Args
	case *UnaryExpr:
		return []Expr{e.Operand}
	default:
		panic(e)
	}
}

// Walk calls visit for e and, while visit returns true, for each of its
// descendants in depth-first order.
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, visit)
	}
}

// IsAggregate is true for the aggregate function calls.
func IsAggregate(e Expr) bool {
	switch e.(type) {
	case *GroupOpExpr, *CountDistinctExpr, *DistributionExpr, *TopKExpr:
		return true
	}
	return false
}

// ContainsAggregate is true if e is or contains an aggregate call.
func ContainsAggregate(e Expr) bool {
	var found bool
	Walk(e, func(e Expr) bool {
		if IsAggregate(e) {
			found = true
		}
		return !found
	})
	return found
}

// IsField is true for a field reference with any number of subfield
// accesses applied.
func IsField(e Expr) bool {
	switch e := e.(type) {
	case *FieldExpr:
		return true
	case *SubFieldExpr:
		return IsField(e.Expr)
	}
	return false
}

// Unparen strips enclosing parentheses from e.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}
