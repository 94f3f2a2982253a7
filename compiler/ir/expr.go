package ir

import "github.com/bullet-db/bql"

type Expr interface {
	exprNode()
	ResultType() bql.Type
}

// Exprs

type (
	BinaryExpr struct {
		Kind  string   `json:"kind" unpack:""`
		Op    string   `json:"op"`
		Left  Expr     `json:"left"`
		Right Expr     `json:"right"`
		Type  bql.Type `json:"type"`
	}
	CastExpr struct {
		Kind     string   `json:"kind" unpack:""`
		Value    Expr     `json:"value"`
		CastType bql.Type `json:"cast_type"`
		Type     bql.Type `json:"type"`
	}
	// FieldExpr references a top-level field, optionally indexed into once
	// by Index or Key and then once more by SubKey.
	FieldExpr struct {
		Kind   string   `json:"kind" unpack:""`
		Field  string   `json:"field"`
		Index  *int     `json:"index,omitempty"`
		Key    *string  `json:"key,omitempty"`
		SubKey *string  `json:"sub_key,omitempty"`
		Type   bql.Type `json:"type"`
	}
	ListExpr struct {
		Kind   string   `json:"kind" unpack:""`
		Values []Expr   `json:"values"`
		Type   bql.Type `json:"type"`
	}
	// NAryExpr is IF(cond, then, else) or x [NOT] BETWEEN lower AND upper
	// with the operands in that order.
	NAryExpr struct {
		Kind     string   `json:"kind" unpack:""`
		Op       string   `json:"op"`
		Operands []Expr   `json:"operands"`
		Type     bql.Type `json:"type"`
	}
	UnaryExpr struct {
		Kind    string   `json:"kind" unpack:""`
		Op      string   `json:"op"`
		Operand Expr     `json:"operand"`
		Type    bql.Type `json:"type"`
	}
	// ValueExpr is a literal.  Value is its text without type suffix or
	// quotes.
	ValueExpr struct {
		Kind  string   `json:"kind" unpack:""`
		Value string   `json:"value"`
		Type  bql.Type `json:"type"`
	}
)

func (*BinaryExpr) exprNode() {}
func (*CastExpr) exprNode()   {}
func (*FieldExpr) exprNode()  {}
func (*ListExpr) exprNode()   {}
func (*NAryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()  {}
func (*ValueExpr) exprNode()  {}

func (e *BinaryExpr) ResultType() bql.Type { return e.Type }
func (e *CastExpr) ResultType() bql.Type   { return e.Type }
func (e *FieldExpr) ResultType() bql.Type  { return e.Type }
func (e *ListExpr) ResultType() bql.Type   { return e.Type }
func (e *NAryExpr) ResultType() bql.Type   { return e.Type }
func (e *UnaryExpr) ResultType() bql.Type  { return e.Type }
func (e *ValueExpr) ResultType() bql.Type  { return e.Type }

func NewField(name string, typ bql.Type) *FieldExpr {
	return &FieldExpr{Kind: "FieldExpr", Field: name, Type: typ}
}
