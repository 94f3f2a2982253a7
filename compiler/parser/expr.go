package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/bullet-db/bql/compiler/ast"
	"github.com/shopspring/decimal"
)

const (
	precLowest = iota
	precOr
	precXor
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
)

var binaryPrecedence = map[string]int{
	"OR":    precOr,
	"XOR":   precXor,
	"AND":   precAnd,
	"=":     precCompare,
	"!=":    precCompare,
	"<>":    precCompare,
	"<":     precCompare,
	"<=":    precCompare,
	">":     precCompare,
	">=":    precCompare,
	"RLIKE": precCompare,
	"IN":    precCompare,
	"+":     precAdd,
	"-":     precAdd,
	"*":     precMul,
	"/":     precMul,
	"%":     precMul,
}

// Functions by the node they parse to.
var (
	unaryFuncs   = []string{"SIZEOF", "ABS", "TRIM", "LOWER", "UPPER", "HASH"}
	binaryFuncs  = []string{"SIZEIS", "CONTAINSKEY", "CONTAINSVALUE", "FILTER"}
	groupFuncs   = []string{"COUNT", "SUM", "MIN", "MAX", "AVG"}
	distribFuncs = []string{"QUANTILE", "FREQ", "CUMFREQ"}
	otherFuncs   = []string{"CAST", "IF", "TOP"}
)

func isOneOf(name string, names []string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (p *parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.matchOp(",") {
			return exprs, nil
		}
	}
}

func (p *parser) parseExpr(precedence int) (ast.Expr, error) {
	pos := p.peek().pos
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp && tok.typ != tokKeyword {
			return left, nil
		}
		op := tok.lit
		if op == "NOT" || op == "IS" || op == "BETWEEN" {
			if precCompare <= precedence {
				return left, nil
			}
			if left, err = p.parsePredicate(left, pos); err != nil {
				return nil, err
			}
			continue
		}
		prec, ok := binaryPrecedence[op]
		if !ok || prec <= precedence {
			return left, nil
		}
		p.next()
		if op == "<>" {
			op = "!="
		}
		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			Kind:       "BinaryExpr",
			Op:         op,
			LHS:        left,
			RHS:        right,
			Occurrence: p.id(),
			Loc:        p.loc(pos),
		}
	}
}

// parsePredicate parses the postfix forms [NOT] IN, [NOT] BETWEEN,
// [NOT] RLIKE and IS [NOT] NULL.
func (p *parser) parsePredicate(left ast.Expr, pos int) (ast.Expr, error) {
	if p.matchKeyword("IS") {
		not := p.matchKeyword("NOT")
		if _, err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		return &ast.IsNullExpr{
			Kind:       "IsNullExpr",
			Expr:       left,
			Not:        not,
			Occurrence: p.id(),
			Loc:        p.loc(pos),
		}, nil
	}
	not := p.matchKeyword("NOT")
	switch {
	case p.matchKeyword("BETWEEN"):
		lower, err := p.parseExpr(precCompare)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}
		upper, err := p.parseExpr(precCompare)
		if err != nil {
			return nil, err
		}
		return &ast.BetweenExpr{
			Kind:       "BetweenExpr",
			Not:        not,
			Expr:       left,
			Lower:      lower,
			Upper:      upper,
			Occurrence: p.id(),
			Loc:        p.loc(pos),
		}, nil
	case not && (p.isKeyword("IN") || p.isKeyword("RLIKE")):
		op := p.next().lit
		right, err := p.parseExpr(precCompare)
		if err != nil {
			return nil, err
		}
		e := &ast.BinaryExpr{
			Kind:       "BinaryExpr",
			Op:         op,
			LHS:        left,
			RHS:        right,
			Occurrence: p.id(),
			Loc:        p.loc(pos),
		}
		if op == "IN" {
			e.Op = "NOT IN"
			return e, nil
		}
		return p.unary("NOT", e, pos), nil
	}
	return nil, p.unexpected(p.peek(), "BETWEEN, IN or RLIKE")
}

func (p *parser) unary(op string, operand ast.Expr, pos int) ast.Expr {
	return &ast.UnaryExpr{
		Kind:       "UnaryExpr",
		Op:         op,
		Operand:    operand,
		Occurrence: p.id(),
		Loc:        p.loc(pos),
	}
}

func (p *parser) parsePrefix() (ast.Expr, error) {
	tok := p.peek()
	switch tok.typ {
	case tokNumber:
		p.next()
		return p.number(tok, false)
	case tokString:
		p.next()
		return p.literal(ast.LiteralString, tok.lit, tok.pos), nil
	case tokQuotedIdent:
		p.next()
		return p.parseField(tok)
	case tokIdent:
		if next := p.peekN(1); next.typ == tokOp && next.lit == "(" {
			return p.parseCall()
		}
		p.next()
		return p.parseField(tok)
	case tokKeyword:
		switch tok.lit {
		case "TRUE", "FALSE":
			p.next()
			return p.literal(ast.LiteralBoolean, tok.lit, tok.pos), nil
		case "NULL":
			p.next()
			return p.literal(ast.LiteralNull, tok.lit, tok.pos), nil
		case "NOT":
			p.next()
			operand, err := p.parseExpr(precNot)
			if err != nil {
				return nil, err
			}
			return p.unary("NOT", operand, tok.pos), nil
		}
	case tokOp:
		switch tok.lit {
		case "-":
			p.next()
			if num := p.peek(); num.typ == tokNumber && num.pos == tok.end+1 {
				p.next()
				return p.number(num, true)
			}
			operand, err := p.parseExpr(precUnary)
			if err != nil {
				return nil, err
			}
			return p.unary("-", operand, tok.pos), nil
		case "(":
			p.next()
			e, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &ast.ParenExpr{Kind: "ParenExpr", Expr: e, Occurrence: p.id(), Loc: p.loc(tok.pos)}, nil
		case "[":
			return p.parseList()
		}
	}
	return nil, p.unexpected(tok, "expression")
}

func (p *parser) literal(typ, text string, pos int) *ast.LiteralExpr {
	return &ast.LiteralExpr{
		Kind:       "LiteralExpr",
		Type:       typ,
		Text:       text,
		Occurrence: p.id(),
		Loc:        p.loc(pos),
	}
}

// number types a numeric literal from its spelling.  Integers are INTEGER
// when they fit in 32 bits and LONG when they fit in 64.  A larger integer
// is left untyped for the semantic pass to report.
func (p *parser) number(tok token, negative bool) (ast.Expr, error) {
	pos := tok.pos
	if negative {
		pos--
	}
	text := tok.lit
	suffix := strings.ToUpper(text[len(text)-1:])
	if suffix == "L" || suffix == "F" || suffix == "D" {
		text = text[:len(text)-1]
	} else {
		suffix = ""
	}
	if negative {
		text = "-" + text
	}
	integral := !strings.ContainsAny(text, ".eE")
	switch suffix {
	case "L":
		if !integral {
			return nil, p.errorf(tok, "parse error: %s is not a valid LONG", tok.lit)
		}
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return p.literal("", text, pos), nil
		}
		return p.literal(ast.LiteralLong, text, pos), nil
	case "F":
		return p.literal(ast.LiteralFloat, text, pos), nil
	case "D":
		return p.double(tok, text, pos)
	}
	if integral {
		n, err := strconv.ParseInt(text, 10, 64)
		switch {
		case err != nil:
			return p.literal("", text, pos), nil
		case n >= math.MinInt32 && n <= math.MaxInt32:
			return p.literal(ast.LiteralInteger, text, pos), nil
		}
		return p.literal(ast.LiteralLong, text, pos), nil
	}
	if p.decimals == DecimalReject {
		return nil, &parseError{
			msg:  "decimal literals are not allowed",
			hint: "Use an explicit type suffix such as 1.5d or 1.5f.",
			pos:  pos,
		}
	}
	return p.double(tok, text, pos)
}

// double normalizes the text of a DOUBLE literal so that 2.0, 2d and 2e0
// are the same literal.  AS_DECIMAL keeps every significant digit.
func (p *parser) double(tok token, text string, pos int) (ast.Expr, error) {
	if p.decimals == DecimalAsDecimal {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, p.errorf(tok, "parse error: %s is not a valid decimal", tok.lit)
		}
		return p.literal(ast.LiteralDouble, d.String(), pos), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf(tok, "parse error: %s is not a valid DOUBLE", tok.lit)
	}
	return p.literal(ast.LiteralDouble, strconv.FormatFloat(f, 'g', -1, 64), pos), nil
}

// parseField parses a field reference and any subfield accesses.
func (p *parser) parseField(tok token) (ast.Expr, error) {
	var e ast.Expr = &ast.FieldExpr{
		Kind:       "FieldExpr",
		Name:       tok.lit,
		Quoted:     tok.typ == tokQuotedIdent,
		Occurrence: p.id(),
		Loc:        ast.NewLoc(tok.pos, tok.end),
	}
	for {
		switch {
		case p.matchOp("."):
			key := p.peek()
			if key.typ != tokIdent && key.typ != tokQuotedIdent && key.typ != tokKeyword {
				return nil, p.unexpected(key, "subfield name")
			}
			p.next()
			e = p.subfield(e, nil, &key.raw, true, tok.pos)
		case p.matchOp("["):
			sub := p.next()
			switch sub.typ {
			case tokString:
				e = p.subfield(e, nil, &sub.lit, false, tok.pos)
			case tokNumber:
				n, err := strconv.Atoi(sub.lit)
				if err != nil || n < 0 {
					return nil, p.errorf(sub, "parse error: %s is not a valid list index", sub.lit)
				}
				e = p.subfield(e, &n, nil, false, tok.pos)
			default:
				return nil, p.unexpected(sub, "list index or map key")
			}
			if _, err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e.(*ast.SubFieldExpr).Loc = p.loc(tok.pos)
		default:
			return e, nil
		}
	}
}

func (p *parser) subfield(e ast.Expr, index *int, key *string, dot bool, pos int) ast.Expr {
	return &ast.SubFieldExpr{
		Kind:       "SubFieldExpr",
		Expr:       e,
		Index:      index,
		Key:        key,
		Dot:        dot,
		Occurrence: p.id(),
		Loc:        p.loc(pos),
	}
}

func (p *parser) parseList() (ast.Expr, error) {
	start := p.next()
	list := &ast.ListExpr{Kind: "ListExpr"}
	if !p.isOp("]") {
		elems, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		list.Elems = elems
	}
	if _, err := p.expectOp("]"); err != nil {
		return nil, err
	}
	list.Occurrence = p.id()
	list.Loc = p.loc(start.pos)
	return list, nil
}

func (p *parser) parseCall() (ast.Expr, error) {
	nameTok := p.next()
	p.next()
	name := strings.ToUpper(nameTok.lit)
	switch {
	case name == "CAST":
		return p.parseCast(nameTok)
	case name == "TOP":
		return p.parseTopK(nameTok)
	case name == "COUNT" && p.isOp("*"):
		p.next()
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.GroupOpExpr{
			Kind:       "GroupOpExpr",
			Op:         name,
			Star:       true,
			Occurrence: p.id(),
			Loc:        p.loc(nameTok.pos),
		}, nil
	case name == "COUNT" && p.isKeyword("DISTINCT"):
		p.next()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.CountDistinctExpr{
			Kind:       "CountDistinctExpr",
			Args:       args,
			Occurrence: p.id(),
			Loc:        p.loc(nameTok.pos),
		}, nil
	case isOneOf(name, groupFuncs):
		distinct := p.matchKeyword("DISTINCT")
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.GroupOpExpr{
			Kind:       "GroupOpExpr",
			Op:         name,
			Distinct:   distinct,
			Args:       args,
			Occurrence: p.id(),
			Loc:        p.loc(nameTok.pos),
		}, nil
	case isOneOf(name, distribFuncs):
		return p.parseDistribution(nameTok, name)
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	arity := func(n int) error {
		if len(args) != n {
			return p.errorf(nameTok, "parse error: %s takes %d arguments but %d were given", name, n, len(args))
		}
		return nil
	}
	switch {
	case isOneOf(name, unaryFuncs):
		if err := arity(1); err != nil {
			return nil, err
		}
		return p.unary(name, args[0], nameTok.pos), nil
	case isOneOf(name, binaryFuncs):
		if err := arity(2); err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{
			Kind:       "BinaryExpr",
			Op:         name,
			LHS:        args[0],
			RHS:        args[1],
			Occurrence: p.id(),
			Loc:        p.loc(nameTok.pos),
		}, nil
	case name == "IF":
		if err := arity(3); err != nil {
			return nil, err
		}
		return &ast.NAryExpr{
			Kind:       "NAryExpr",
			Op:         name,
			Operands:   args,
			Occurrence: p.id(),
			Loc:        p.loc(nameTok.pos),
		}, nil
	}
	return nil, &parseError{
		msg:  "unknown function " + nameTok.lit,
		hint: suggest(name),
		pos:  nameTok.pos,
	}
}

// parseArgs parses a comma-separated argument list through the closing
// parenthesis.  The opening parenthesis has been consumed.
func (p *parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if !p.isOp(")") {
		var err error
		if args, err = p.parseExprList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseCast(nameTok token) (ast.Expr, error) {
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	typ := p.peek()
	if typ.typ != tokIdent {
		return nil, p.unexpected(typ, "type name")
	}
	p.next()
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &ast.CastExpr{
		Kind:       "CastExpr",
		Expr:       e,
		Type:       strings.ToUpper(typ.lit),
		Occurrence: p.id(),
		Loc:        p.loc(nameTok.pos),
	}, nil
}

// parseTopK parses TOP(k, threshold?, expr, ...).  A second integer
// argument followed by more arguments is the threshold.
func (p *parser) parseTopK(nameTok token) (ast.Expr, error) {
	k, err := p.parseCount()
	if err != nil {
		return nil, err
	}
	top := &ast.TopKExpr{Kind: "TopKExpr", Size: k}
	if _, err := p.expectOp(","); err != nil {
		return nil, err
	}
	if p.peek().typ == tokNumber && p.peekN(1).typ == tokOp && p.peekN(1).lit == "," {
		threshold, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		top.Threshold = &threshold
		p.next()
	}
	if top.Args, err = p.parseArgs(); err != nil {
		return nil, err
	}
	if len(top.Args) == 0 {
		return nil, p.errorf(nameTok, "parse error: TOP requires at least one field")
	}
	top.Occurrence = p.id()
	top.Loc = p.loc(nameTok.pos)
	return top, nil
}

// parseDistribution parses OP(expr, LINEAR, n), OP(expr, REGION, start,
// end, increment) or OP(expr, MANUAL, p1, p2, ...).
func (p *parser) parseDistribution(nameTok token, op string) (ast.Expr, error) {
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(","); err != nil {
		return nil, err
	}
	mode, err := p.expectWord("LINEAR", "REGION", "MANUAL")
	if err != nil {
		return nil, err
	}
	d := &ast.DistributionExpr{Kind: "DistributionExpr", Op: op, Expr: e, Mode: mode}
	var points []float64
	for p.matchOp(",") {
		f, err := p.parseSignedNumber()
		if err != nil {
			return nil, err
		}
		points = append(points, f)
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	bad := func(want string) error {
		return p.errorf(nameTok, "parse error: %s with %s requires %s", op, mode, want)
	}
	switch mode {
	case "LINEAR":
		if len(points) != 1 || points[0] != math.Trunc(points[0]) {
			return nil, bad("a number of points")
		}
		d.NumPoints = int64(points[0])
	case "REGION":
		if len(points) != 3 {
			return nil, bad("a start, an end and an increment")
		}
		d.RangeStart, d.RangeEnd, d.Increment = points[0], points[1], points[2]
	case "MANUAL":
		if len(points) == 0 {
			return nil, bad("at least one point")
		}
		d.Points = points
	}
	d.Occurrence = p.id()
	d.Loc = p.loc(nameTok.pos)
	return d, nil
}

func (p *parser) parseSignedNumber() (float64, error) {
	negative := p.matchOp("-")
	tok := p.peek()
	if tok.typ != tokNumber {
		return 0, p.unexpected(tok, "number")
	}
	p.next()
	text := strings.TrimRight(tok.lit, "LlFfDd")
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, p.errorf(tok, "parse error: %s is not a valid number", tok.lit)
	}
	if negative {
		f = -f
	}
	return f, nil
}

// suggest returns a hint naming the known function closest to name.
func suggest(name string) string {
	best, bestDist := "", math.MaxInt
	for _, names := range [][]string{unaryFuncs, binaryFuncs, groupFuncs, distribFuncs, otherFuncs} {
		for _, candidate := range names {
			if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
				best, bestDist = candidate, d
			}
		}
	}
	if bestDist > 2 {
		return ""
	}
	return "did you mean " + best + "?"
}
