package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hanpama/gqlexec/internal/schema"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// DefaultResolver is used for fields without a resolver. It takes the value
// from the source:
//
//   - a map with string keys: the entry named after the field;
//   - a struct (or a pointer to one): the field tagged `graphql:"<name>"`, or
//     else the exported field whose name matches case-insensitively;
//   - an exported method whose name matches case-insensitively, called with no
//     arguments or with the context, returning the value and optionally an
//     error.
//
// A source without a matching member resolves to null.
func DefaultResolver(p schema.ResolveParams) (any, error) {
	name := p.Info.FieldName
	if m, ok := p.Source.(map[string]any); ok {
		return m[name], nil
	}

	src := reflect.ValueOf(p.Source)
	if !src.IsValid() {
		return nil, nil
	}
	if method, ok := findMethod(src, name); ok {
		return callMethod(p.Context, method, name)
	}

	value := src
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		entry := value.MapIndex(reflect.ValueOf(name).Convert(value.Type().Key()))
		if !entry.IsValid() {
			return nil, nil
		}
		return entry.Interface(), nil
	case reflect.Struct:
		field, ok := findStructField(value, name)
		if !ok {
			return nil, nil
		}
		if field.Kind() == reflect.Func && !field.IsNil() {
			return callMethod(p.Context, field, name)
		}
		return field.Interface(), nil
	}
	return nil, nil
}

func findStructField(value reflect.Value, name string) (reflect.Value, bool) {
	typ := value.Type()
	var byName reflect.Value
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup("graphql"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == name {
				return value.Field(i), true
			}
			if tagName == "-" {
				continue
			}
		}
		if !byName.IsValid() && strings.EqualFold(sf.Name, name) {
			byName = value.Field(i)
		}
	}
	return byName, byName.IsValid()
}

func findMethod(value reflect.Value, name string) (reflect.Value, bool) {
	typ := value.Type()
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if strings.EqualFold(m.Name, name) {
			return value.Method(i), true
		}
	}
	return reflect.Value{}, false
}

func callMethod(ctx context.Context, fn reflect.Value, name string) (any, error) {
	ft := fn.Type()
	var in []reflect.Value
	switch {
	case ft.NumIn() == 0:
	case ft.NumIn() == 1 && ft.In(0) == contextType:
		in = []reflect.Value{reflect.ValueOf(ctx)}
	default:
		return nil, fmt.Errorf("default resolver cannot call %s: unsupported signature %s", name, ft)
	}

	switch {
	case ft.NumOut() == 1:
		return fn.Call(in)[0].Interface(), nil
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		out := fn.Call(in)
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
	return nil, fmt.Errorf("default resolver cannot call %s: unsupported signature %s", name, ft)
}
