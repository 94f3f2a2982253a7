// Package bql holds the type system shared by the BQL compiler packages.
package bql

import (
	"fmt"
	"strings"
)

// Type is a BQL value type.  Primitive types occupy the low nibble and
// the container shape (list, map, list of maps, map of maps) the next one.
type Type uint8

const (
	Unknown Type = iota
	Null
	Boolean
	Integer
	Long
	Float
	Double
	String
)

const (
	shapePrimitive = iota << 4
	shapeList
	shapeMap
	shapeMapList
	shapeMapMap

	primMask  = 0x0f
	shapeMask = 0xf0
)

var primitiveNames = [...]string{
	Unknown: "UNKNOWN",
	Null:    "NULL",
	Boolean: "BOOLEAN",
	Integer: "INTEGER",
	Long:    "LONG",
	Float:   "FLOAT",
	Double:  "DOUBLE",
	String:  "STRING",
}

var shapeSuffix = map[Type]string{
	shapeList:    "_LIST",
	shapeMap:     "_MAP",
	shapeMapList: "_MAP_LIST",
	shapeMapMap:  "_MAP_MAP",
}

// Primitives lists the primitive types in widening rank order with
// the non-numeric types at either end.
var Primitives = []Type{Boolean, Integer, Long, Float, Double, String}

func ListOf(t Type) Type    { return container(t, shapeList) }
func MapOf(t Type) Type     { return container(t, shapeMap) }
func MapListOf(t Type) Type { return container(t, shapeMapList) }
func MapMapOf(t Type) Type  { return container(t, shapeMapMap) }

// Primitive returns the primitive type underlying t.
func (t Type) Primitive() Type { return t & primMask }

func container(t Type, shape Type) Type {
	if !t.IsPrimitive() {
		panic(fmt.Sprintf("container of non-primitive type %s", t))
	}
	return shape | t
}

func (t Type) shape() Type { return t & shapeMask }

// IsPrimitive is true for BOOLEAN, the numeric types and STRING.
func (t Type) IsPrimitive() bool {
	return t.shape() == shapePrimitive && t >= Boolean && t <= String
}

func (t Type) IsNumeric() bool {
	return t >= Integer && t <= Double
}

// IsWhole is true for the types usable as a list index or a size.
func (t Type) IsWhole() bool {
	return t == Integer || t == Long
}

func (t Type) IsList() bool {
	s := t.shape()
	return s == shapeList || s == shapeMapList
}

func (t Type) IsMap() bool {
	s := t.shape()
	return s == shapeMap || s == shapeMapMap
}

// IsContainer is true for any list or map type.
func (t Type) IsContainer() bool {
	return t.shape() != shapePrimitive
}

// IsPrimitiveList is true for lists whose elements are primitives.
func (t Type) IsPrimitiveList() bool { return t.shape() == shapeList }

// IsPrimitiveMap is true for maps whose values are primitives.
func (t Type) IsPrimitiveMap() bool { return t.shape() == shapeMap }

// IsMapLike is true when the type can be indexed by a string key at
// some level: maps, maps of maps and lists of maps.
func (t Type) IsMapLike() bool {
	return t.IsMap() || t.shape() == shapeMapList
}

// IsAbsent is true for the two sentinel types that match any operand slot.
func (t Type) IsAbsent() bool {
	return t == Unknown || t == Null
}

// Sub returns the type obtained by indexing into a container once or
// Unknown if t is not a container.
func (t Type) Sub() Type {
	switch t.shape() {
	case shapeList, shapeMap:
		return t.Primitive()
	case shapeMapList, shapeMapMap:
		return MapOf(t.Primitive())
	}
	return Unknown
}

func (t Type) String() string {
	p := t.Primitive()
	if int(p) >= len(primitiveNames) {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return primitiveNames[p] + shapeSuffix[t.shape()]
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	typ, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = typ
	return nil
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type)
	for p := range primitiveNames {
		m[primitiveNames[p]] = Type(p)
	}
	for _, p := range Primitives {
		for _, t := range []Type{ListOf(p), MapOf(p), MapListOf(p), MapMapOf(p)} {
			m[t.String()] = t
		}
	}
	return m
}()

// ParseType looks up a type by its upper-case name, ignoring case.
func ParseType(name string) (Type, error) {
	if t, ok := typesByName[strings.ToUpper(name)]; ok {
		return t, nil
	}
	return Unknown, fmt.Errorf("unknown type %q", name)
}

// Widen returns the wider of two numeric types.  It returns Unknown
// if either type is not numeric.
func Widen(a, b Type) Type {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Unknown
	}
	return max(a, b)
}
