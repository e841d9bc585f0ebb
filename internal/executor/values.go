package executor

import (
	"fmt"
	"math"
	"strconv"

	language "github.com/hanpama/gqlexec/internal/language"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

// coerceVariableValues applies defaults and input coercion to the variables
// declared by operation. Undeclared inputs are ignored.
func coerceVariableValues(sch *schema.Schema, operation *language.OperationDefinition, inputs map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, def := range operation.VariableDefinitions {
		name, typ := def.Variable, def.Type
		value, provided := inputs[name]
		if !provided {
			switch {
			case def.DefaultValue != nil:
				dv, err := def.DefaultValue.Value(nil)
				if err != nil {
					return nil, fmt.Errorf("variable $%s has an invalid default value: %v", name, err)
				}
				value = dv
			case typ.NonNull:
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, typ)
			default:
				continue
			}
		}
		if value == nil && typ.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, typ)
		}
		cv, err := coerceValue(sch, value, schema.TypeRefFromAST(typ))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, typ, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues builds the argument map of a field from its literal
// or variable arguments and the declared defaults. The first argument that
// cannot be coerced fails the whole field.
func coerceArgumentValues(sch *schema.Schema, field *schema.Field, arguments language.ArgumentList, variables map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(field.Arguments))
	for _, def := range field.Arguments {
		var (
			value    any
			provided bool
		)
		if arg := arguments.ForName(def.Name); arg != nil {
			provided = true
			// an argument bound to an absent variable counts as omitted
			if arg.Value != nil && arg.Value.Kind == language.Variable {
				_, provided = variables[arg.Value.Raw]
			}
			if provided {
				v, err := arg.Value.Value(variables)
				if err != nil {
					return nil, fmt.Errorf("argument '%s' cannot be coerced: %v", def.Name, err)
				}
				value = v
			}
		}

		if !provided {
			switch {
			case def.DefaultValue != nil:
				cv, err := coerceValue(sch, def.DefaultValue, def.Type)
				if err != nil {
					return nil, fmt.Errorf("default value of argument '%s' cannot be coerced: %v", def.Name, err)
				}
				coerced[def.Name] = cv
			case schema.IsNonNull(def.Type):
				return nil, fmt.Errorf("argument '%s' of required type %s was not provided", def.Name, def.Type)
			}
			continue
		}

		cv, err := coerceValue(sch, value, def.Type)
		if err != nil {
			return nil, fmt.Errorf("argument '%s' cannot be coerced: %v", def.Name, err)
		}
		coerced[def.Name] = cv
	}
	return coerced, nil
}

var scalarCoercers = map[string]func(any) (any, error){
	"Int":     coerceInt,
	"Float":   coerceFloat,
	"String":  coerceString,
	"Boolean": coerceBoolean,
	"ID":      coerceID,
}

// coerceValue converts an input value to the runtime form of typ. Custom
// scalars pass through unchanged.
func coerceValue(sch *schema.Schema, value any, typ *schema.TypeRef) (any, error) {
	if schema.IsNonNull(typ) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(sch, value, typ.OfType)
	}
	if value == nil {
		return nil, nil
	}
	if typ.Kind == schema.TypeRefKindList {
		items, ok := value.([]any)
		if !ok {
			items = []any{value}
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceValue(sch, item, typ.OfType)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	if coerce, ok := scalarCoercers[typ.Named]; ok {
		return coerce(value)
	}
	named := sch.Type(typ.Named)
	if named == nil {
		return nil, fmt.Errorf("unknown type %s", typ.Named)
	}
	switch named.Kind {
	case schema.TypeKindEnum:
		if name, ok := value.(string); ok && named.EnumValue(name) != nil {
			return name, nil
		}
		return nil, fmt.Errorf("value %v is not a member of enum %s", value, named.Name)
	case schema.TypeKindInputObject:
		return coerceInputObject(sch, value, named)
	}
	return value, nil
}

func coerceInputObject(sch *schema.Schema, value any, typ *schema.Type) (any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object for input type %s, got %T", typ.Name, value)
	}
	declared := make(map[string]bool, len(typ.InputFields))
	for _, f := range typ.InputFields {
		declared[f.Name] = true
	}
	for name := range fields {
		if !declared[name] {
			return nil, fmt.Errorf("field '%s' is not defined by input type %s", name, typ.Name)
		}
	}

	out := make(map[string]any, len(typ.InputFields))
	for _, f := range typ.InputFields {
		v, provided := fields[f.Name]
		if !provided {
			switch {
			case f.DefaultValue != nil:
				cv, err := coerceValue(sch, f.DefaultValue, f.Type)
				if err != nil {
					return nil, fmt.Errorf("default value of field '%s': %v", f.Name, err)
				}
				out[f.Name] = cv
			case schema.IsNonNull(f.Type):
				return nil, fmt.Errorf("field '%s' of required type %s was not provided", f.Name, f.Type)
			}
			continue
		}
		cv, err := coerceValue(sch, v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %v", f.Name, err)
		}
		out[f.Name] = cv
	}
	return out, nil
}

// Input coercion of the built-in scalars does not convert between kinds:
// strings are never parsed as numbers and numbers never become strings,
// except that an ID also accepts an integer.

func coerceInt(value any) (any, error) {
	var n float64
	switch v := value.(type) {
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	default:
		return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
	}
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
	}
	return int(n), nil
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v, nil
		}
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

func coerceString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to string", value, value)
}

func coerceBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to id", value, value)
}
