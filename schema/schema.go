// Package schema describes the fields a BQL query may reference and the
// layered view of them used while a query is analyzed.
package schema

import (
	"errors"
	"fmt"
	"os"

	"github.com/bullet-db/bql"
	"github.com/goccy/go-yaml"
)

type Field struct {
	Name string   `yaml:"name" json:"name"`
	Type bql.Type `yaml:"type" json:"type"`
}

// Schema is an immutable set of typed fields.
type Schema struct {
	fields []Field
	types  map[string]bql.Type
}

type file struct {
	Fields []Field `yaml:"fields"`
}

// New returns a Schema for fields.  Field names must be unique and types
// must be concrete.
func New(fields []Field) (*Schema, error) {
	s := &Schema{types: make(map[string]bql.Type)}
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("schema field missing a name")
		}
		if f.Type.IsAbsent() {
			return nil, fmt.Errorf("schema field %q: type %s is not allowed", f.Name, f.Type)
		}
		if _, ok := s.types[f.Name]; ok {
			return nil, fmt.Errorf("schema field %q defined more than once", f.Name)
		}
		s.types[f.Name] = f.Type
		s.fields = append(s.fields, f)
	}
	return s, nil
}

func MustNew(fields ...Field) *Schema {
	s, err := New(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes a YAML schema document of the form
//
//	fields:
//	  - name: abc
//	    type: STRING
func Parse(b []byte) (*Schema, error) {
	var f file
	if err := yaml.UnmarshalWithOptions(b, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	return New(f.Fields)
}

func Load(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Lookup returns the type of the named field and whether it exists.
func (s *Schema) Lookup(name string) (bql.Type, bool) {
	typ, ok := s.types[name]
	return typ, ok
}

func (s *Schema) Fields() []Field {
	return s.fields
}
