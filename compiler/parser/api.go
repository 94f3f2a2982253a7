package parser

import (
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/bullet-db/bql/compiler/srcfiles"
)

// DecimalMode selects how a decimal literal without a type suffix is read.
type DecimalMode string

const (
	DecimalAsDouble  DecimalMode = "AS_DOUBLE"
	DecimalAsDecimal DecimalMode = "AS_DECIMAL"
	DecimalReject    DecimalMode = "REJECT"
)

func (m DecimalMode) Valid() bool {
	switch m {
	case DecimalAsDouble, DecimalAsDecimal, DecimalReject:
		return true
	}
	return false
}

type AST struct {
	query *ast.Query
	files *srcfiles.List
}

func (a *AST) Parsed() *ast.Query {
	return a.query
}

func (a *AST) Copy() *ast.Query {
	return ast.Copy(a.query)
}

func (a *AST) Files() *srcfiles.List {
	return a.files
}

// ParseQuery parses a query text using DecimalAsDouble and tracks line
// numbers for error reporting.
func ParseQuery(query string) (*AST, error) {
	return ParseQueryWithDecimals(query, DecimalAsDouble)
}

// ParseQueryWithDecimals is ParseQuery with the given treatment of
// unsuffixed decimal literals.
func ParseQueryWithDecimals(query string, mode DecimalMode) (*AST, error) {
	files := srcfiles.New(query)
	tokens, lerr := lex(query)
	if lerr != nil {
		files.AddError("parse error: "+lerr.msg, lerr.pos, -1)
		return nil, files.Error()
	}
	p := &parser{tokens: tokens, decimals: mode}
	q, err := p.parseQuery()
	if err != nil {
		convertParseErr(err, files)
		return nil, files.Error()
	}
	return &AST{q, files}, nil
}

func convertParseErr(err error, files *srcfiles.List) {
	pe, ok := err.(*parseError)
	if !ok {
		files.AddError(err.Error(), -1, -1)
		return
	}
	files.AddErrorWithHint(pe.msg, pe.hint, pe.pos, -1)
}
