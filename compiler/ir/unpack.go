package ir

import (
	"fmt"

	"github.com/bullet-db/bql/pkg/unpack"
	"github.com/goccy/go-json"
)

var unpacker = unpack.New(
	BinaryExpr{},
	CastExpr{},
	Computation{},
	CountDistinct{},
	Culling{},
	Distribution{},
	FieldExpr{},
	Group{},
	ListExpr{},
	NAryExpr{},
	OrderBy{},
	Raw{},
	TopK{},
	UnaryExpr{},
	ValueExpr{},
)

// Marshal encodes q as JSON with fields in declaration order.
func Marshal(q *Query) ([]byte, error) {
	return json.Marshal(q)
}

// Unmarshal transforms a JSON representation of a query into a Query.
func Unmarshal(b []byte) (*Query, error) {
	var q Query
	if err := unpacker.Unmarshal(b, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func UnmarshalExpr(b []byte) (Expr, error) {
	var e Expr
	if err := unpacker.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return e, nil
}

// CopyQuery returns a deep copy of q.
func CopyQuery(q *Query) *Query {
	b, err := Marshal(q)
	if err != nil {
		panic(err)
	}
	out, err := Unmarshal(b)
	if err != nil {
		panic(fmt.Errorf("internal error: ir.CopyQuery: %w", err))
	}
	return out
}
