package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

var builtinScalarNames = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// IsBuiltinScalar reports whether name is one of the five scalars every schema
// carries.
func IsBuiltinScalar(name string) bool { return builtinScalarNames[name] }

func isBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf", "defer":
		return true
	}
	return false
}

// builtinScalars returns fresh instances so that binding a serializer on one
// schema does not leak into another.
func builtinScalars() []*Type {
	return []*Type{
		{
			Name:        "String",
			Kind:        TypeKindScalar,
			Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
			Serialize:   SerializeString,
		},
		{
			Name:        "Int",
			Kind:        TypeKindScalar,
			Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
			Serialize:   SerializeInt,
		},
		{
			Name:        "Float",
			Kind:        TypeKindScalar,
			Description: "The `Float` scalar type represents signed double-precision fractional values.",
			Serialize:   SerializeFloat,
		},
		{
			Name:        "Boolean",
			Kind:        TypeKindScalar,
			Description: "The `Boolean` scalar type represents `true` or `false`.",
			Serialize:   SerializeBoolean,
		},
		{
			Name:        "ID",
			Kind:        TypeKindScalar,
			Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
			Serialize:   SerializeID,
		},
	}
}

func includeDirective() *Directive {
	return &Directive{
		Name:        "include",
		Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		Arguments: []*InputValue{
			{
				Name:        "if",
				Description: "Included when true.",
				Type:        NonNullType(NamedType("Boolean")),
			},
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func skipDirective() *Directive {
	return &Directive{
		Name:        "skip",
		Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		Arguments: []*InputValue{
			{
				Name:        "if",
				Description: "Skipped when true.",
				Type:        NonNullType(NamedType("Boolean")),
			},
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func SerializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if f, ok := toFloat(value); ok {
		if i, isInt := toInt(value); isInt {
			return strconv.FormatInt(i, 10), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	}
	if s, ok := indirectKind(value, reflect.String); ok {
		return s.String(), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v", value)
}

func SerializeInt(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %q", v)
		}
		return int(i), nil
	}
	if i, ok := toInt(value); ok {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
		}
		return int(i), nil
	}
	if f, ok := toFloat(value); ok {
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", value)
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
		}
		return int(f), nil
	}
	return nil, fmt.Errorf("Int cannot represent non-integer value: %v", value)
}

func SerializeFloat(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %q", v)
		}
		return f, nil
	}
	if f, ok := toFloat(value); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %v", value)
		}
		return f, nil
	}
	return nil, fmt.Errorf("Float cannot represent non numeric value: %v", value)
}

func SerializeBoolean(value any) (any, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	if f, ok := toFloat(value); ok {
		return f != 0, nil
	}
	if b, ok := indirectKind(value, reflect.Bool); ok {
		return b.Bool(), nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", value)
}

func SerializeID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if i, ok := toInt(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	if s, ok := indirectKind(value, reflect.String); ok {
		return s.String(), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v", value)
}

// EnumSerializer returns the default serializer for an enum type: the value
// must be the name of one of its members, as a string or a named string type.
func EnumSerializer(t *Type) SerializeFunc {
	return func(value any) (any, error) {
		var name string
		switch v := value.(type) {
		case string:
			name = v
		case fmt.Stringer:
			name = v.String()
		default:
			s, ok := indirectKind(value, reflect.String)
			if !ok {
				return nil, fmt.Errorf("Enum '%s' cannot represent value: %v", t.Name, value)
			}
			name = s.String()
		}
		if t.EnumValue(name) == nil {
			return nil, fmt.Errorf("Enum '%s' cannot represent value: %q", t.Name, name)
		}
		return name, nil
	}
}

func toInt(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	if i, ok := toInt(value); ok {
		return float64(i), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func indirectKind(value any, kind reflect.Kind) (reflect.Value, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != kind {
		return reflect.Value{}, false
	}
	return rv, true
}
