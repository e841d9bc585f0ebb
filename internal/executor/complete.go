package executor

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/hanpama/gqlexec/internal/respath"
	"github.com/hanpama/gqlexec/internal/schema"
)

// completeValue shapes result according to returnType. A non-nil error means
// the position could not be completed and must be handled by the caller.
func (ec *executionContext) completeValue(returnType *schema.TypeRef, fieldNodes []*ast.Field, info *schema.ResolveInfo, path *respath.Path, result any) (any, error) {
	if returnType.IsNonNull() {
		completed, err := ec.completeValue(returnType.OfType, fieldNodes, info, path, result)
		if err != nil {
			return nil, err
		}
		if completed == nil {
			return nil, gqlerror.Errorf("Cannot return null for non-nullable field '%s.%s'.", info.ParentType.Name, info.FieldName)
		}
		return completed, nil
	}

	if isNullish(result) {
		return nil, nil
	}

	if returnType.Kind == schema.TypeRefKindList {
		return ec.completeListValue(returnType, fieldNodes, info, path, result)
	}

	namedType := ec.schema.Type(returnType.Named)
	if namedType == nil {
		return nil, fmt.Errorf("unknown type %q", returnType.Named)
	}
	switch namedType.Category() {
	case schema.CategoryScalar, schema.CategoryEnum:
		return completeLeafValue(namedType, result)
	case schema.CategoryObject:
		return ec.completeObjectValue(namedType, fieldNodes, info, path, result)
	case schema.CategoryInterface, schema.CategoryUnion:
		return ec.completeAbstractValue(namedType, fieldNodes, info, path, result)
	}
	return nil, fmt.Errorf("cannot complete value of unexpected output type %q", namedType.Name)
}

// completeListValue completes every item, including the ones after a failed
// item, so that sibling errors are all reported.
func (ec *executionContext) completeListValue(returnType *schema.TypeRef, fieldNodes []*ast.Field, info *schema.ResolveInfo, path *respath.Path, result any) (any, error) {
	items, ok := listItems(result)
	if !ok {
		return nil, gqlerror.Errorf("Expected Iterable, but did not find one for field '%s.%s'.", info.ParentType.Name, info.FieldName)
	}

	itemType := returnType.OfType
	completed := make([]any, len(items))
	errs := make([]error, len(items))
	ec.forEach(len(items), false, func(i int) error {
		completed[i], errs[i] = ec.completeListItem(itemType, fieldNodes, info, path.WithIndex(i), items[i])
		return errs[i]
	})
	if err := ec.firstError(errs); err != nil {
		return nil, err
	}
	return completed, nil
}

func (ec *executionContext) completeListItem(itemType *schema.TypeRef, fieldNodes []*ast.Field, info *schema.ResolveInfo, itemPath *respath.Path, item any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ec.logger.Error("recovered panic while completing list item",
				zap.String("path", itemPath.String()), zap.Any("panic", r), zap.Stack("stack"))
			value, err = nil, ec.handleFieldError(fmt.Errorf("panic: %v", r), itemType, fieldNodes, itemPath)
		}
	}()

	item, err = ec.await(item, itemPath)
	if err == nil {
		value, err = ec.completeValue(itemType, fieldNodes, info, itemPath, item)
	}
	if err != nil {
		return nil, ec.handleFieldError(err, itemType, fieldNodes, itemPath)
	}
	return value, nil
}

func completeLeafValue(leafType *schema.Type, result any) (any, error) {
	serialize := leafType.Serialize
	if serialize == nil {
		if leafType.Kind != schema.TypeKindEnum {
			return result, nil
		}
		serialize = schema.EnumSerializer(leafType)
	}
	serialized, err := serialize(result)
	if err != nil {
		return nil, err
	}
	if serialized == nil {
		return nil, fmt.Errorf("expected serializer of '%s' to return a non-null value for %s", leafType.Name, inspect(result))
	}
	return serialized, nil
}

func (ec *executionContext) completeObjectValue(objectType *schema.Type, fieldNodes []*ast.Field, info *schema.ResolveInfo, path *respath.Path, result any) (any, error) {
	if objectType.IsTypeOf != nil {
		ok, err := ec.isTypeOf(objectType, result, info, path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, gqlerror.Errorf("Expected value of type '%s' but got: %s.", objectType.Name, inspect(result))
		}
	}
	return ec.executeSelectionSet(objectType, mergeSelectionSets(fieldNodes), result, path)
}

func (ec *executionContext) completeAbstractValue(abstractType *schema.Type, fieldNodes []*ast.Field, info *schema.ResolveInfo, path *respath.Path, result any) (any, error) {
	runtimeType, err := ec.resolveConcreteType(abstractType, result, info, path)
	if err != nil {
		return nil, err
	}
	return ec.completeObjectValue(runtimeType, fieldNodes, info, path, result)
}

// listItems accepts slices, arrays and iter.Seq[any]. Strings are not lists.
func listItems(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case iter.Seq[any]:
		var items []any
		for item := range v {
			items = append(items, item)
		}
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
