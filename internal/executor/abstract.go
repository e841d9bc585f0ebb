package executor

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlexec/internal/future"
	"github.com/hanpama/gqlexec/internal/respath"
	"github.com/hanpama/gqlexec/internal/schema"
)

// resolveConcreteType determines the object type value has when it is
// returned for a field of the abstract type abstractType.
func (ec *executionContext) resolveConcreteType(abstractType *schema.Type, value any, info *schema.ResolveInfo, path *respath.Path) (*schema.Type, error) {
	var ref schema.ConcreteTypeRef
	if abstractType.ResolveType != nil {
		f, err := callHook(func() *future.Future[any] {
			return abstractType.ResolveType(schema.ResolveTypeParams{
				Context:      ec.ctx,
				Value:        value,
				Info:         info,
				AbstractType: abstractType,
			})
		})
		if err != nil {
			return nil, err
		}
		raw, err := awaitFuture(ec, f, path)
		if err != nil {
			return nil, err
		}
		r, ok := schema.ToConcreteTypeRef(raw)
		if !ok || r.IsZero() {
			return nil, noConcreteTypeError(abstractType, info, value, inspect(raw))
		}
		ref = r
	} else {
		r, err := ec.defaultResolveType(abstractType, value, info, path)
		if err != nil {
			return nil, err
		}
		if r.IsZero() {
			return nil, noConcreteTypeError(abstractType, info, value, "nil")
		}
		ref = r
	}
	return ec.ensureValidRuntimeType(ref, abstractType, value, info)
}

// defaultResolveType is used when the abstract type has no ResolveType hook.
// A map carrying a string "__typename" names its own type. Otherwise the
// possible types are asked in declaration order and the first whose IsTypeOf
// answers true wins; types without a predicate never match.
func (ec *executionContext) defaultResolveType(abstractType *schema.Type, value any, info *schema.ResolveInfo, path *respath.Path) (schema.ConcreteTypeRef, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok && name != "" {
			return schema.TypeNamed(name), nil
		}
	}
	for _, possibleType := range ec.schema.PossibleTypes(abstractType) {
		if possibleType.IsTypeOf == nil {
			continue
		}
		matched, err := ec.isTypeOf(possibleType, value, info, path)
		if err != nil {
			return schema.ConcreteTypeRef{}, err
		}
		if matched {
			return schema.TypeDirect(possibleType), nil
		}
	}
	return schema.ConcreteTypeRef{}, nil
}

func (ec *executionContext) isTypeOf(objectType *schema.Type, value any, info *schema.ResolveInfo, path *respath.Path) (bool, error) {
	f, err := callHook(func() *future.Future[bool] {
		return objectType.IsTypeOf(schema.IsTypeOfParams{Context: ec.ctx, Value: value, Info: info})
	})
	if err != nil {
		return false, err
	}
	return awaitFuture(ec, f, path)
}

func (ec *executionContext) ensureValidRuntimeType(ref schema.ConcreteTypeRef, abstractType *schema.Type, value any, info *schema.ResolveInfo) (*schema.Type, error) {
	var runtimeType *schema.Type
	if direct, ok := ref.Direct(); ok {
		if registered := ec.schema.Type(direct.Name); registered != nil && registered != direct {
			return nil, gqlerror.Errorf("Schema must contain unique named types but contains multiple types named '%s'.", direct.Name)
		}
		runtimeType = direct
	} else {
		runtimeType = ec.schema.Type(ref.Name())
		if runtimeType == nil {
			return nil, gqlerror.Errorf("Abstract type '%s' was resolved to a type '%s' that does not exist inside the schema.", abstractType.Name, ref.Name())
		}
	}

	if runtimeType.Kind != schema.TypeKindObject {
		return nil, noConcreteTypeError(abstractType, info, value, runtimeType.Name)
	}
	if !ec.schema.IsPossibleType(abstractType, runtimeType) {
		return nil, gqlerror.Errorf("Runtime Object type '%s' is not a possible type for '%s'.", runtimeType.Name, abstractType.Name)
	}
	return runtimeType, nil
}

// noConcreteTypeError reports that no object type was found for value.
// received is the inspected hook result, the name of a non-object type, or
// the literal nil when nothing was returned or no hook ran.
func noConcreteTypeError(abstractType *schema.Type, info *schema.ResolveInfo, value any, received string) error {
	return gqlerror.Errorf(
		"Abstract type '%s' must resolve to an Object type at runtime for field '%s.%s' with value '%s', received '%s'. "+
			"Either the '%s' type should provide a 'resolve_type' function or each possible type should provide an 'is_type_of' function.",
		abstractType.Name, info.ParentType.Name, info.FieldName, inspect(value), received, abstractType.Name,
	)
}

// callHook invokes a capability hook and turns a panic into an error.
func callHook[T any](fn func() *future.Future[T]) (f *future.Future[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(), nil
}
