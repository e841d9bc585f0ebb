package executor

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanpama/gqlexec/internal/respath"
	"github.com/hanpama/gqlexec/internal/schema"
)

// executeField resolves and completes the field shared by fieldNodes. present
// is false when the parent type has no such field; the response then omits
// the key.
func (ec *executionContext) executeField(parentType *schema.Type, source any, fieldNodes []*ast.Field, path *respath.Path) (value any, present bool, err error) {
	fieldName := fieldNodes[0].Name
	if fieldName == "__typename" {
		return parentType.Name, true, nil
	}
	fieldDef := parentType.Field(fieldName)
	if fieldDef == nil {
		return nil, false, nil
	}
	info := ec.resolveInfo(parentType, fieldDef, fieldNodes, path)

	defer func() {
		if r := recover(); r != nil {
			ec.logger.Error("recovered panic in field execution",
				zap.String("path", path.String()), zap.Any("panic", r), zap.Stack("stack"))
			value, present, err = nil, true, ec.handleFieldError(fmt.Errorf("panic: %v", r), fieldDef.Type, fieldNodes, path)
		}
	}()

	result, err := ec.resolveField(parentType, fieldDef, source, fieldNodes, info)
	if err == nil {
		result, err = ec.await(result, path)
	}
	if err == nil {
		value, err = ec.completeValue(fieldDef.Type, fieldNodes, info, path, result)
	}
	if err != nil {
		return nil, true, ec.handleFieldError(err, fieldDef.Type, fieldNodes, path)
	}
	return value, true, nil
}

// resolveField coerces the arguments of the first field node and calls the
// resolver. The result may still be a future.
func (ec *executionContext) resolveField(parentType *schema.Type, fieldDef *schema.Field, source any, fieldNodes []*ast.Field, info *schema.ResolveInfo) (result any, err error) {
	args, err := coerceArgumentValues(ec.schema, fieldDef, fieldNodes[0].Arguments, ec.variableValues)
	if err != nil {
		return nil, err
	}

	resolve := fieldDef.Resolve
	if resolve == nil {
		resolve = ec.defaultResolver
	}

	ctx := ec.ctx
	if ec.tracer != nil && fieldDef.Resolve != nil {
		var span trace.Span
		ctx, span = ec.tracer.Start(ctx, parentType.Name+"."+fieldDef.Name,
			trace.WithAttributes(
				attribute.String("graphql.field.path", info.Path.String()),
				attribute.String("graphql.field.type", fieldDef.Type.String()),
			))
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}()
	}

	return resolve(schema.ResolveParams{
		Context: ctx,
		Source:  source,
		Args:    args,
		Info:    info,
	})
}
