package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bullet-db/bql/compiler/ast"
)

type parser struct {
	tokens   []token
	cursor   int
	last     token
	nextID   int
	decimals DecimalMode
}

// parseError is a syntax error at a source offset.
type parseError struct {
	msg  string
	hint string
	pos  int
}

func (e *parseError) Error() string { return e.msg }

func (p *parser) errorf(tok token, format string, args ...any) *parseError {
	return &parseError{msg: fmt.Sprintf(format, args...), pos: tok.pos}
}

func (p *parser) unexpected(tok token, expected string) *parseError {
	return p.errorf(tok, "parse error: expected %s, found %s", expected, tok)
}

func (p *parser) peek() token {
	return p.tokens[p.cursor]
}

func (p *parser) peekN(n int) token {
	if k := p.cursor + n; k < len(p.tokens) {
		return p.tokens[k]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() token {
	tok := p.tokens[p.cursor]
	if tok.typ != tokEOF {
		p.cursor++
	}
	p.last = tok
	return tok
}

func (p *parser) isKeyword(kw string) bool {
	tok := p.peek()
	return tok.typ == tokKeyword && tok.lit == kw
}

func (p *parser) isOp(op string) bool {
	tok := p.peek()
	return tok.typ == tokOp && tok.lit == op
}

// isWord matches an unreserved word like MAX or TIME regardless of case.
func (p *parser) isWord(word string) bool {
	tok := p.peek()
	return tok.typ == tokIdent && strings.EqualFold(tok.lit, word)
}

func (p *parser) matchKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) matchOp(op string) bool {
	if p.isOp(op) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) (token, error) {
	if !p.isKeyword(kw) {
		return token{}, p.unexpected(p.peek(), kw)
	}
	return p.next(), nil
}

func (p *parser) expectOp(op string) (token, error) {
	if !p.isOp(op) {
		return token{}, p.unexpected(p.peek(), strconv.Quote(op))
	}
	return p.next(), nil
}

// expectWord consumes one of the given unreserved words and returns it
// in upper case.
func (p *parser) expectWord(words ...string) (string, error) {
	for _, w := range words {
		if p.isWord(w) {
			p.next()
			return w, nil
		}
	}
	return "", p.unexpected(p.peek(), strings.Join(words, " or "))
}

func (p *parser) id() ast.Occurrence {
	p.nextID++
	return ast.Occurrence{ID: p.nextID}
}

// loc spans from the token at pos through the last consumed token.
func (p *parser) loc(pos int) ast.Loc {
	return ast.NewLoc(pos, p.last.end)
}

func (p *parser) parseQuery() (*ast.Query, error) {
	start, err := p.expectKeyword("SELECT")
	if err != nil {
		return nil, err
	}
	q := &ast.Query{Kind: "Query"}
	if q.Select, err = p.parseSelect(start); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	if q.Stream, err = p.parseStream(); err != nil {
		return nil, err
	}
	if p.isKeyword("LATERAL") {
		if q.LateralView, err = p.parseLateralView(); err != nil {
			return nil, err
		}
	}
	if p.matchKeyword("WHERE") {
		if q.Where, err = p.parseExpr(precLowest); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("GROUP") {
		if q.GroupBy, err = p.parseGroupBy(); err != nil {
			return nil, err
		}
	}
	if p.matchKeyword("HAVING") {
		if q.Having, err = p.parseExpr(precLowest); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("ORDER") {
		if q.OrderBy, err = p.parseOrderBy(); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("WINDOWING") {
		if q.Window, err = p.parseWindow(); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("LIMIT") {
		if q.Limit, err = p.parseLimit(); err != nil {
			return nil, err
		}
	}
	p.matchOp(";")
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, p.unexpected(tok, "end of query")
	}
	q.Loc = p.loc(start.pos)
	return q, nil
}

func (p *parser) parseSelect(start token) (ast.Select, error) {
	sel := ast.Select{Distinct: p.matchKeyword("DISTINCT")}
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return sel, err
		}
		sel.Items = append(sel.Items, item)
		if !p.matchOp(",") {
			break
		}
	}
	sel.Loc = p.loc(start.pos)
	return sel, nil
}

func (p *parser) parseSelectItem() (ast.SelectItem, error) {
	pos := p.peek().pos
	if p.matchOp("*") {
		return ast.SelectItem{Star: true, Loc: p.loc(pos)}, nil
	}
	e, err := p.parseExpr(precLowest)
	if err != nil {
		return ast.SelectItem{}, err
	}
	item := ast.SelectItem{Expr: e}
	explicit := p.matchKeyword("AS")
	if tok := p.peek(); tok.typ == tokIdent || tok.typ == tokQuotedIdent {
		name := p.parseName()
		item.Alias = &name
	} else if explicit {
		return item, p.unexpected(tok, "alias")
	}
	item.Loc = p.loc(pos)
	return item, nil
}

func (p *parser) parseName() ast.Name {
	tok := p.next()
	return ast.Name{
		Text:   tok.lit,
		Quoted: tok.typ == tokQuotedIdent,
		Loc:    ast.NewLoc(tok.pos, tok.end),
	}
}

func (p *parser) expectName() (ast.Name, error) {
	if tok := p.peek(); tok.typ != tokIdent && tok.typ != tokQuotedIdent {
		return ast.Name{}, p.unexpected(tok, "identifier")
	}
	return p.parseName(), nil
}

// parseStream parses STREAM(), STREAM(MAX, unit) or STREAM(n, unit).
func (p *parser) parseStream() (ast.Stream, error) {
	start, err := p.expectKeyword("STREAM")
	if err != nil {
		return ast.Stream{}, err
	}
	if _, err := p.expectOp("("); err != nil {
		return ast.Stream{}, err
	}
	var s ast.Stream
	if !p.isOp(")") {
		if p.isWord("MAX") {
			p.next()
			s.Max = true
		} else {
			n, err := p.parseCount()
			if err != nil {
				return s, err
			}
			s.Duration = &n
		}
		if _, err := p.expectOp(","); err != nil {
			return s, err
		}
		if s.Unit, err = p.expectWord(ast.UnitTime, ast.UnitRecord); err != nil {
			return s, err
		}
	}
	if _, err := p.expectOp(")"); err != nil {
		return s, err
	}
	s.Loc = p.loc(start.pos)
	return s, nil
}

func (p *parser) parseLateralView() (*ast.LateralView, error) {
	start := p.next()
	if _, err := p.expectKeyword("VIEW"); err != nil {
		return nil, err
	}
	lv := &ast.LateralView{Outer: p.matchKeyword("OUTER")}
	if _, err := p.expectWord("EXPLODE"); err != nil {
		return nil, err
	}
	if _, err := p.expectOp("("); err != nil {
		return nil, err
	}
	var err error
	if lv.Expr, err = p.parseExpr(precLowest); err != nil {
		return nil, err
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	if p.matchOp("(") {
		for k := 0; k < 2; k++ {
			if k > 0 {
				if _, err := p.expectOp(","); err != nil {
					return nil, err
				}
			}
			name, err := p.expectName()
			if err != nil {
				return nil, err
			}
			lv.Aliases = append(lv.Aliases, name)
		}
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
	} else {
		name, err := p.expectName()
		if err != nil {
			return nil, err
		}
		lv.Aliases = []ast.Name{name}
	}
	lv.Loc = p.loc(start.pos)
	return lv, nil
}

func (p *parser) parseGroupBy() (*ast.GroupBy, error) {
	start := p.next()
	if _, err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	g := &ast.GroupBy{}
	if p.isOp("(") && p.peekN(1).typ == tokOp && p.peekN(1).lit == ")" {
		p.next()
		p.next()
	} else {
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		g.Exprs = exprs
	}
	g.Loc = p.loc(start.pos)
	return g, nil
}

func (p *parser) parseOrderBy() (*ast.OrderBy, error) {
	start := p.next()
	if _, err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	o := &ast.OrderBy{}
	for {
		pos := p.peek().pos
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		item := ast.SortItem{Expr: e}
		if p.matchKeyword("DESC") {
			item.Desc = true
		} else {
			p.matchKeyword("ASC")
		}
		item.Loc = p.loc(pos)
		o.Items = append(o.Items, item)
		if !p.matchOp(",") {
			break
		}
	}
	o.Loc = p.loc(start.pos)
	return o, nil
}

// parseWindow parses EVERY(n, unit, include) and TUMBLING(n, unit).
func (p *parser) parseWindow() (*ast.Window, error) {
	start := p.next()
	typ, err := p.expectWord(ast.WindowEvery, ast.WindowTumbling)
	if err != nil {
		return nil, err
	}
	w := &ast.Window{Type: typ}
	if _, err := p.expectOp("("); err != nil {
		return nil, err
	}
	if w.Every, err = p.parseCount(); err != nil {
		return nil, err
	}
	if _, err := p.expectOp(","); err != nil {
		return nil, err
	}
	if w.Unit, err = p.expectWord(ast.UnitTime, ast.UnitRecord); err != nil {
		return nil, err
	}
	if typ == ast.WindowEvery {
		if _, err := p.expectOp(","); err != nil {
			return nil, err
		}
		if w.Include, err = p.parseInclude(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOp(")"); err != nil {
		return nil, err
	}
	w.Loc = p.loc(start.pos)
	return w, nil
}

func (p *parser) parseInclude() (*ast.Include, error) {
	pos := p.peek().pos
	typ, err := p.expectWord(ast.IncludeAll, ast.IncludeFirst, ast.IncludeLast)
	if err != nil {
		return nil, err
	}
	inc := &ast.Include{Type: typ}
	if typ != ast.IncludeAll {
		if _, err := p.expectOp(","); err != nil {
			return nil, err
		}
		if inc.Count, err = p.parseCount(); err != nil {
			return nil, err
		}
		if _, err := p.expectOp(","); err != nil {
			return nil, err
		}
		if inc.Unit, err = p.expectWord(ast.UnitTime, ast.UnitRecord); err != nil {
			return nil, err
		}
	}
	inc.Loc = p.loc(pos)
	return inc, nil
}

func (p *parser) parseLimit() (*ast.Limit, error) {
	start := p.next()
	n, err := p.parseCount()
	if err != nil {
		return nil, err
	}
	return &ast.Limit{Count: n, Loc: p.loc(start.pos)}, nil
}

// parseCount parses a non-negative integer without a type suffix.
func (p *parser) parseCount() (int64, error) {
	tok := p.peek()
	if tok.typ != tokNumber {
		return 0, p.unexpected(tok, "integer")
	}
	n, err := strconv.ParseInt(tok.lit, 10, 64)
	if err != nil {
		return 0, p.errorf(tok, "parse error: %s is not a valid integer", tok.lit)
	}
	p.next()
	return n, nil
}
