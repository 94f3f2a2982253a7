package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokQuotedIdent
	tokKeyword
	tokNumber
	tokString
	tokOp
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of query"
	case tokIdent, tokQuotedIdent:
		return "identifier"
	case tokKeyword:
		return "keyword"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	}
	return "operator"
}

// token is a lexical token.  Pos and End are the offsets of its first and
// last bytes.  Keywords are upper-cased and strings unescaped in lit while
// raw holds the source spelling.
type token struct {
	typ tokenType
	lit string
	pos int
	end int
	raw string
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return t.typ.String()
	case tokString:
		return "'" + t.lit + "'"
	case tokQuotedIdent:
		return `"` + t.lit + `"`
	}
	return t.lit
}

var keywords = map[string]bool{
	"AND":       true,
	"AS":        true,
	"ASC":       true,
	"BETWEEN":   true,
	"BY":        true,
	"DESC":      true,
	"DISTINCT":  true,
	"FALSE":     true,
	"FROM":      true,
	"GROUP":     true,
	"HAVING":    true,
	"IN":        true,
	"IS":        true,
	"LATERAL":   true,
	"LIMIT":     true,
	"NOT":       true,
	"NULL":      true,
	"OR":        true,
	"ORDER":     true,
	"OUTER":     true,
	"RLIKE":     true,
	"SELECT":    true,
	"STREAM":    true,
	"TRUE":      true,
	"VIEW":      true,
	"WHERE":     true,
	"WINDOWING": true,
	"XOR":       true,
}

// Two-character operators are listed before their one-character prefixes.
var operators = []string{"!=", "<>", "<=", ">=", "(", ")", "[", "]", ",", ".", "*", "+", "-", "/", "%", "=", "<", ">", ";"}

type lexError struct {
	msg string
	pos int
}

func lex(src string) ([]token, *lexError) {
	var tokens []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case strings.HasPrefix(src[i:], "--"):
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case r == '\'':
			tok, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = tok.end + 1
		case r == '"':
			end := strings.IndexByte(src[i+1:], '"')
			if end < 0 {
				return nil, &lexError{"unterminated quoted identifier", i}
			}
			end += i + 1
			tokens = append(tokens, token{tokQuotedIdent, src[i+1 : end], i, end, src[i+1 : end]})
			i = end + 1
		case isDigit(src[i]):
			tok := lexNumber(src, i)
			tokens = append(tokens, tok)
			i = tok.end + 1
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				i += size
			}
			lit := src[start:i]
			if upper := strings.ToUpper(lit); keywords[upper] {
				tokens = append(tokens, token{tokKeyword, upper, start, i - 1, lit})
			} else {
				tokens = append(tokens, token{tokIdent, lit, start, i - 1, lit})
			}
		default:
			op := matchOperator(src[i:])
			if op == "" {
				return nil, &lexError{"unexpected character " + string(r), i}
			}
			tokens = append(tokens, token{tokOp, op, i, i + len(op) - 1, op})
			i += len(op)
		}
	}
	return append(tokens, token{typ: tokEOF, pos: len(src), end: len(src)}), nil
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func lexString(src string, start int) (token, *lexError) {
	var b strings.Builder
	for i := start + 1; i < len(src); i++ {
		switch c := src[i]; c {
		case '\\':
			if i+1 < len(src) {
				i++
				b.WriteByte(unescape(src[i]))
				continue
			}
		case '\'':
			return token{tokString, b.String(), start, i, src[start : i+1]}, nil
		default:
			b.WriteByte(c)
		}
	}
	return token{}, &lexError{"unterminated string literal", start}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return c
}

// lexNumber scans digits with an optional fraction, exponent and one of
// the type suffixes L, F or D.
func lexNumber(src string, start int) token {
	i := start
	digits := func() {
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	digits()
	if i+1 < len(src) && src[i] == '.' && isDigit(src[i+1]) {
		i++
		digits()
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			digits()
		}
	}
	if i < len(src) && strings.ContainsRune("LlFfDd", rune(src[i])) && !isIdentChar(src, i+1) {
		i++
	}
	return token{tokNumber, src[start:i], start, i - 1, src[start:i]}
}

func isIdentChar(src string, i int) bool {
	if i >= len(src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(src[i:])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
