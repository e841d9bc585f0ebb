package executor

import (
	"fmt"
	"reflect"
	"strings"
)

// inspect renders a value for use in error messages.
func inspect(v any) string {
	if v == nil {
		return "nil"
	}
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return inspect(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "[]"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = inspect(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Func:
		return fmt.Sprintf("<func %s>", rv.Type())
	}
	return fmt.Sprintf("%v", v)
}
