package ast

import (
	"fmt"

	"github.com/bullet-db/bql/pkg/unpack"
	"github.com/goccy/go-json"
)

var unpacker = unpack.New(
	BetweenExpr{},
	BinaryExpr{},
	CastExpr{},
	CountDistinctExpr{},
	DistributionExpr{},
	FieldExpr{},
	GroupOpExpr{},
	IsNullExpr{},
	ListExpr{},
	LiteralExpr{},
	NAryExpr{},
	ParenExpr{},
	SubFieldExpr{},
	TopKExpr{},
	UnaryExpr{},
)

// UnmarshalQuery transforms a JSON representation of a query into a Query.
func UnmarshalQuery(buf []byte) (*Query, error) {
	var q Query
	if err := unpacker.Unmarshal(buf, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func UnmarshalExpr(buf []byte) (Expr, error) {
	var e Expr
	if err := unpacker.Unmarshal(buf, &e); err != nil {
		return nil, err
	}
	return e, nil
}

func Copy(in *Query) *Query {
	b, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	out, err := UnmarshalQuery(b)
	if err != nil {
		panic(fmt.Errorf("internal error: ast.Copy: %w", err))
	}
	return out
}
