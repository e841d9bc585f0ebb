package executor

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanpama/gqlexec/internal/future"
	language "github.com/hanpama/gqlexec/internal/language"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

type Executor struct {
	schema *schema.Schema
	opts   options
}

type options struct {
	logger          *zap.Logger
	tracer          trace.Tracer
	maxConcurrency  int
	defaultResolver schema.FieldResolveFunc
}

// Option configures an Executor.
type Option func(*options)

// WithLogger sets the logger used for recovered panics and execution
// summaries. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracer opens a span around every call to a field's own resolver.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMaxConcurrency bounds the number of goroutines started for one
// selection set or one list in asynchronous execution. Zero means no limit.
func WithMaxConcurrency(n int) Option {
	return func(o *options) { o.maxConcurrency = n }
}

// WithDefaultResolver replaces DefaultResolver for fields without a resolver.
func WithDefaultResolver(fn schema.FieldResolveFunc) Option {
	return func(o *options) { o.defaultResolver = fn }
}

func NewExecutor(sch *schema.Schema, opts ...Option) *Executor {
	o := options{
		logger:          zap.NewNop(),
		defaultResolver: DefaultResolver,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{schema: sch, opts: o}
}

// Params describes one execution request.
type Params struct {
	Document       *language.QueryDocument
	OperationName  string
	VariableValues map[string]any
	RootValue      any
}

// Execute runs the operation asynchronously: sibling fields and list items
// are completed on their own goroutines and pending futures are awaited.
func (e *Executor) Execute(ctx context.Context, p Params) *future.Future[*ExecutionResult] {
	return future.Go(func() (*ExecutionResult, error) {
		return e.execute(ctx, p, false)
	})
}

// ExecuteRequest runs Execute to completion on the calling goroutine. When
// ctx ends, pending fields fail with the context error at their own paths and
// the fields already resolved are kept. An engine failure is reported as the
// only error of the result.
func (e *Executor) ExecuteRequest(ctx context.Context, p Params) *ExecutionResult {
	res, err := e.execute(ctx, p, false)
	if err != nil {
		return requestError("%s", err.Error())
	}
	return res
}

// ExecuteRequestSync runs the operation on the calling goroutine. Resolvers
// and hooks may return futures only if they are already complete; a pending
// one aborts the execution with an *InvariantError.
func (e *Executor) ExecuteRequestSync(ctx context.Context, p Params) (*ExecutionResult, error) {
	return e.execute(ctx, p, true)
}

func (e *Executor) execute(ctx context.Context, p Params, sync bool) (*ExecutionResult, error) {
	start := time.Now()
	if p.Document == nil {
		return requestError("must provide document"), nil
	}
	operation, res := getOperation(p.Document, p.OperationName)
	if res != nil {
		return res, nil
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, p.VariableValues)
	if err != nil {
		return requestError("%s", err.Error()), nil
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return requestError("unsupported operation type: %s", operation.Operation), nil
	}
	if rootType == nil {
		return requestError("schema is not configured for %s operations", operation.Operation), nil
	}

	ec := &executionContext{
		ctx:             ctx,
		schema:          e.schema,
		document:        p.Document,
		operation:       operation,
		fragments:       p.Document.Fragments,
		variableValues:  coercedVariableValues,
		rootValue:       p.RootValue,
		sync:            sync,
		logger:          e.opts.logger,
		tracer:          e.opts.tracer,
		maxConcurrency:  e.opts.maxConcurrency,
		defaultResolver: e.opts.defaultResolver,
	}

	fields := ec.collectFields(rootType, operation.SelectionSet)
	var data any
	if operation.Operation == language.Mutation {
		data, err = ec.executeFieldsSerially(rootType, p.RootValue, nil, fields)
	} else {
		data, err = ec.executeFields(rootType, p.RootValue, nil, fields, false)
	}
	if err != nil {
		var located *fieldError
		if !errors.As(err, &located) {
			ec.logger.Warn("execution aborted", zap.Error(err), zap.Bool("sync", sync))
			return nil, err
		}
		ec.addError(located)
		data = nil
	}

	result := &ExecutionResult{Data: data, Errors: ec.sortedErrors()}
	ec.logger.Debug("operation executed",
		zap.String("operation", operation.Name),
		zap.String("type", string(operation.Operation)),
		zap.Bool("sync", sync),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) (*language.OperationDefinition, *ExecutionResult) {
	if operationName == "" {
		switch len(document.Operations) {
		case 0:
			return nil, requestError("must provide an operation")
		case 1:
			return document.Operations[0], nil
		default:
			return nil, requestError("must provide operation name if query contains multiple operations")
		}
	}
	if op := document.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, requestError("unknown operation named '%s'", operationName)
}
