package executor

import (
	"context"
	"sort"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanpama/gqlexec/internal/respath"
	"github.com/hanpama/gqlexec/internal/schema"
)

// executionContext holds the state of one execution call. It is never shared
// between requests.
type executionContext struct {
	ctx            context.Context
	schema         *schema.Schema
	document       *ast.QueryDocument
	operation      *ast.OperationDefinition
	fragments      ast.FragmentDefinitionList
	variableValues map[string]any
	rootValue      any
	sync           bool

	logger          *zap.Logger
	tracer          trace.Tracer
	maxConcurrency  int
	defaultResolver schema.FieldResolveFunc

	mu     sync.Mutex
	errors []*fieldError
}

func (ec *executionContext) addError(err *fieldError) {
	ec.mu.Lock()
	ec.errors = append(ec.errors, err)
	ec.mu.Unlock()
}

// sortedErrors returns the recorded errors ordered by response position.
// Errors at the same position keep the order they were recorded in.
func (ec *executionContext) sortedErrors() gqlerror.List {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if len(ec.errors) == 0 {
		return nil
	}
	recorded := append([]*fieldError(nil), ec.errors...)
	sort.SliceStable(recorded, func(i, j int) bool {
		return respath.Compare(recorded[i].path, recorded[j].path) < 0
	})
	out := make(gqlerror.List, len(recorded))
	for i, e := range recorded {
		out[i] = e.err
	}
	return out
}

func (ec *executionContext) resolveInfo(parentType *schema.Type, fieldDef *schema.Field, fieldNodes []*ast.Field, path *respath.Path) *schema.ResolveInfo {
	return &schema.ResolveInfo{
		FieldName:      fieldNodes[0].Name,
		FieldNodes:     fieldNodes,
		ReturnType:     fieldDef.Type,
		ParentType:     parentType,
		Path:           path,
		Schema:         ec.schema,
		Fragments:      ec.fragments,
		RootValue:      ec.rootValue,
		Operation:      ec.operation,
		VariableValues: ec.variableValues,
	}
}
