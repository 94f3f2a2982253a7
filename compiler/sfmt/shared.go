package sfmt

import (
	"strings"

	"github.com/bullet-db/bql"
)

type shared struct {
	formatter
	// raw leaves string literals unescaped and identifiers unquoted.
	raw bool
}

// literal writes a literal of the given type with the suffix that makes
// its type explicit in BQL.  Raw names spell a DOUBLE without its suffix.
func (s *shared) literal(typ bql.Type, text string) {
	switch typ {
	case bql.Long:
		s.write(text + "L")
	case bql.Float:
		s.write(text + "f")
	case bql.Double:
		if !s.raw {
			s.write(text + "d")
			break
		}
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		s.write(text)
	case bql.String:
		s.write("'" + s.escape(text) + "'")
	case bql.Null:
		s.write("NULL")
	case bql.Boolean:
		s.write(strings.ToUpper(text))
	default:
		s.write(text)
	}
}

func (s *shared) escape(text string) string {
	if s.raw {
		return text
	}
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`, "\r", `\r`).Replace(text)
}

// name writes an identifier, quoting it if it was quoted in the source.
func (s *shared) name(text string, quoted bool) {
	if quoted && !s.raw {
		s.write(`"` + text + `"`)
		return
	}
	s.write(text)
}

// binaryFuncs are the binary operators without an infix spelling.
var binaryFuncs = map[string]bool{
	"SIZEIS":        true,
	"CONTAINSKEY":   true,
	"CONTAINSVALUE": true,
	"FILTER":        true,
}

// unaryFuncs are the unary operators spelled as a call.
var unaryFuncs = map[string]bool{
	"SIZEOF": true,
	"ABS":    true,
	"TRIM":   true,
	"LOWER":  true,
	"UPPER":  true,
	"HASH":   true,
}

func needsparens(parent, op string, right bool) bool {
	p, c := precedence(parent), precedence(op)
	return c < p || (right && c == p && c != 100)
}

// precedence ranks operators from loosest to tightest binding.  The empty
// parent is the top of an expression.  Calls and primaries are 100 and
// never need parentheses.
func precedence(op string) int {
	switch op {
	case "":
		return 0
	case "OR":
		return 1
	case "XOR":
		return 2
	case "AND":
		return 3
	case "NOT":
		return 4
	case "=", "!=", "<", "<=", ">", ">=", "RLIKE", "IN", "NOT IN", "BETWEEN", "NOT BETWEEN", "IS NULL", "IS NOT NULL":
		return 5
	case "+", "-":
		return 6
	case "*", "/", "%":
		return 7
	case "NEG":
		return 8
	default:
		return 100
	}
}

func (s *shared) maybewrite(str string, do bool) {
	if do {
		s.write(str)
	}
}
