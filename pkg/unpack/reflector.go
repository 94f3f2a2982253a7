// Package unpack decodes JSON into trees of Go structs whose interface-typed
// fields hold values tagged with a "kind" field naming the concrete type.
//
// Each concrete type registers a template with New.  The JSON object for a
// value of that type must carry a "kind" member equal to the type's name,
// which is how the tree serializes when the struct has a field declared as
//
//	Kind string `json:"kind" unpack:""`
//
// and Kind is set to the type name when the node is constructed.
package unpack

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

const kindField = "kind"

type Reflector struct {
	types map[string]reflect.Type
}

func New(templates ...any) *Reflector {
	r := &Reflector{types: make(map[string]reflect.Type)}
	return r.Add(templates...)
}

// Add registers more templates with r.
func (r *Reflector) Add(templates ...any) *Reflector {
	for _, t := range templates {
		typ := reflect.TypeOf(t)
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		if typ.Kind() != reflect.Struct {
			panic(fmt.Sprintf("unpack: template %s is not a struct", typ))
		}
		r.types[typ.Name()] = typ
	}
	return r
}

// Unmarshal decodes the JSON in b into the value pointed to by v.
func (r *Reflector) Unmarshal(b []byte, v any) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return errors.New("unpack: destination must be a non-nil pointer")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return err
	}
	return r.unpack(ptr.Elem(), generic)
}

func (r *Reflector) UnmarshalString(s string, v any) error {
	return r.Unmarshal([]byte(s), v)
}

var textUnmarshaler = reflect.TypeOf((*interface{ UnmarshalText([]byte) error })(nil)).Elem()

func (r *Reflector) unpack(dst reflect.Value, src any) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.CanAddr() && dst.Addr().Type().Implements(textUnmarshaler) {
		return scalar(dst, src)
	}
	switch dst.Kind() {
	case reflect.Interface:
		if dst.NumMethod() == 0 {
			dst.Set(reflect.ValueOf(src))
			return nil
		}
		return r.concrete(dst, src)
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := r.unpack(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Struct:
		obj, ok := src.(map[string]any)
		if !ok {
			return fmt.Errorf("unpack: %s: expected JSON object", dst.Type())
		}
		return r.fields(dst, obj)
	case reflect.Slice:
		elems, ok := src.([]any)
		if !ok {
			return fmt.Errorf("unpack: %s: expected JSON array", dst.Type())
		}
		s := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
		for k, e := range elems {
			if err := r.unpack(s.Index(k), e); err != nil {
				return err
			}
		}
		dst.Set(s)
		return nil
	}
	return scalar(dst, src)
}

func (r *Reflector) concrete(dst reflect.Value, src any) error {
	obj, ok := src.(map[string]any)
	if !ok {
		return fmt.Errorf("unpack: %s: expected JSON object", dst.Type())
	}
	kind, _ := obj[kindField].(string)
	if kind == "" {
		return fmt.Errorf("unpack: %s: JSON object is missing %q", dst.Type(), kindField)
	}
	typ, ok := r.types[kind]
	if !ok {
		return fmt.Errorf("unpack: unknown kind %q", kind)
	}
	ptr := reflect.New(typ)
	if !ptr.Type().Implements(dst.Type()) {
		return fmt.Errorf("unpack: kind %q does not implement %s", kind, dst.Type())
	}
	if err := r.fields(ptr.Elem(), obj); err != nil {
		return err
	}
	dst.Set(ptr)
	return nil
}

func (r *Reflector) fields(dst reflect.Value, obj map[string]any) error {
	typ := dst.Type()
	for k := range typ.NumField() {
		f := typ.Field(k)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			if err := r.fields(dst.Field(k), obj); err != nil {
				return err
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		val, ok := obj[name]
		if !ok {
			continue
		}
		if err := r.unpack(dst.Field(k), val); err != nil {
			return fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
		}
	}
	return nil
}

func scalar(dst reflect.Value, src any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst.Addr().Interface())
}
