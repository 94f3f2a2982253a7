package schema

import "github.com/bullet-db/bql"

// Layered is a read-only view of a base schema with zero or more layers
// of fields stacked on top.  With returns a new view so a layer pushed
// for one construct never leaks into the view held by its caller.
type Layered struct {
	base   *Schema
	layers *layer
}

type layer struct {
	fields map[string]bql.Type
	next   *layer
}

// NewLayered returns a view of base.  A nil base means no schema was
// configured and every field is of unknown type.
func NewLayered(base *Schema) Layered {
	return Layered{base: base}
}

// With returns a view with fields layered over l.
func (l Layered) With(fields ...Field) Layered {
	m := make(map[string]bql.Type, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Type
	}
	return Layered{base: l.base, layers: &layer{fields: m, next: l.layers}}
}

// Type returns the type of the named field.  Layers are searched newest
// first, then the base schema.  A field absent from a configured base
// schema is NULL; with no base schema it is UNKNOWN.
func (l Layered) Type(name string) bql.Type {
	for lr := l.layers; lr != nil; lr = lr.next {
		if typ, ok := lr.fields[name]; ok {
			return typ
		}
	}
	if l.base == nil {
		return bql.Unknown
	}
	if typ, ok := l.base.Lookup(name); ok {
		return typ
	}
	return bql.Null
}

// HasBase is true if a base schema was configured.
func (l Layered) HasBase() bool {
	return l.base != nil
}
