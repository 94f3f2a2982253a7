package bql

// A Signature describes the operand types an operator accepts.  Operands
// is the phrase used in error messages, e.g., "numeric".
type Signature struct {
	Operands string
	check    func(l, r Type) (Type, bool)
}

// Check returns the result type of applying the operator to operands of
// type l and r, or false if the combination is illegal.  An operand of
// type NULL or UNKNOWN fits any slot.
func (s Signature) Check(l, r Type) (Type, bool) {
	return s.check(l, r)
}

// Binary is the legality table for binary operators keyed by the
// operator's canonical spelling.
var Binary = map[string]Signature{
	"+":             {"numeric or STRING", plus},
	"-":             {"numeric", arithmetic},
	"*":             {"numeric", arithmetic},
	"/":             {"numeric", arithmetic},
	"%":             {"numeric", arithmetic},
	"=":             {"comparable", equality},
	"!=":            {"comparable", equality},
	"<":             {"numeric or STRING", ordering},
	"<=":            {"numeric or STRING", ordering},
	">":             {"numeric or STRING", ordering},
	">=":            {"numeric or STRING", ordering},
	"AND":           {"BOOLEAN", logical},
	"OR":            {"BOOLEAN", logical},
	"XOR":           {"BOOLEAN", logical},
	"RLIKE":         {"STRING", rlike},
	"IN":            {"a primitive and a list of the same primitive", in},
	"NOT IN":        {"a primitive and a list of the same primitive", in},
	"SIZEIS":        {"a list, map or STRING and a whole number", sizeis},
	"CONTAINSKEY":   {"a map or list of maps and a STRING", containskey},
	"CONTAINSVALUE": {"a list or map of primitives and a matching primitive", containsvalue},
	"FILTER":        {"a list and a BOOLEAN_LIST", filter},
}

// Unary is the legality table for unary operators.
var Unary = map[string]Signature{
	"NOT":    {"BOOLEAN", not},
	"-":      {"numeric", negate},
	"ABS":    {"numeric", negate},
	"SIZEOF": {"a list, map or STRING", sizeof},
	"TRIM":   {"STRING", stringfn},
	"LOWER":  {"STRING", stringfn},
	"UPPER":  {"STRING", stringfn},
	"HASH":   {"a primitive", hash},
}

// Compatible is true when values of the two types can be compared: both
// numeric, the same primitive, or either one absent.
func Compatible(a, b Type) bool {
	if a.IsAbsent() || b.IsAbsent() {
		return true
	}
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	return a == b && a.IsPrimitive()
}

func arithmetic(l, r Type) (Type, bool) {
	switch {
	case l.IsNumeric() && r.IsNumeric():
		return Widen(l, r), true
	case l.IsAbsent() && (r.IsNumeric() || r.IsAbsent()):
		return orUnknown(r), true
	case r.IsAbsent() && l.IsNumeric():
		return l, true
	}
	return Unknown, false
}

func plus(l, r Type) (Type, bool) {
	if l == String && (r == String || r.IsAbsent()) || r == String && l.IsAbsent() {
		return String, true
	}
	return arithmetic(l, r)
}

func orUnknown(t Type) Type {
	if t.IsAbsent() {
		return Unknown
	}
	return t
}

func equality(l, r Type) (Type, bool) {
	return Boolean, Compatible(l, r) && !l.IsContainer() && !r.IsContainer()
}

func ordering(l, r Type) (Type, bool) {
	ok := Compatible(l, r) && l != Boolean && r != Boolean && !l.IsContainer() && !r.IsContainer()
	return Boolean, ok
}

func logical(l, r Type) (Type, bool) {
	return Boolean, isa(l, Boolean) && isa(r, Boolean)
}

func rlike(l, r Type) (Type, bool) {
	return Boolean, isa(l, String) && isa(r, String)
}

func in(l, r Type) (Type, bool) {
	if r.IsAbsent() {
		return Boolean, l.IsAbsent() || l.IsPrimitive()
	}
	return Boolean, r.IsPrimitiveList() && Compatible(l, r.Sub()) && !l.IsContainer()
}

func sizeis(l, r Type) (Type, bool) {
	sized := l.IsAbsent() || l.IsContainer() || l == String
	return Boolean, sized && (r.IsAbsent() || r.IsWhole())
}

func containskey(l, r Type) (Type, bool) {
	return Boolean, (l.IsAbsent() || l.IsMapLike()) && isa(r, String)
}

func containsvalue(l, r Type) (Type, bool) {
	if l.IsAbsent() {
		return Boolean, r.IsAbsent() || r.IsPrimitive()
	}
	if !l.IsPrimitiveList() && !l.IsPrimitiveMap() {
		return Boolean, false
	}
	return Boolean, Compatible(l.Sub(), r) && !r.IsContainer()
}

func filter(l, r Type) (Type, bool) {
	ok := (l.IsAbsent() || l.IsList()) && (r.IsAbsent() || r == ListOf(Boolean))
	return orUnknown(l), ok
}

func not(t, _ Type) (Type, bool) {
	return Boolean, isa(t, Boolean)
}

func negate(t, _ Type) (Type, bool) {
	return orUnknown(t), t.IsAbsent() || t.IsNumeric()
}

func sizeof(t, _ Type) (Type, bool) {
	return Integer, t.IsAbsent() || t.IsContainer() || t == String
}

func stringfn(t, _ Type) (Type, bool) {
	return String, isa(t, String)
}

func hash(t, _ Type) (Type, bool) {
	return Integer, t.IsAbsent() || t.IsPrimitive()
}

func isa(t, want Type) bool {
	return t == want || t.IsAbsent()
}

// CanCast reports whether a value of type from may be cast to type to.
func CanCast(from, to Type) bool {
	if !to.IsPrimitive() || from.IsContainer() {
		return false
	}
	if from.IsAbsent() || to == String {
		return true
	}
	return from.IsPrimitive()
}
