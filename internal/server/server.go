// Package server exposes an executor over HTTP following the GraphQL over
// HTTP conventions: GET with query parameters, POST with a JSON body, and
// batched POST bodies holding an array of requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"

	eventbus "github.com/hanpama/gqlexec/internal/eventbus"
	events "github.com/hanpama/gqlexec/internal/events"
	executor "github.com/hanpama/gqlexec/internal/executor"
	language "github.com/hanpama/gqlexec/internal/language"
	reqid "github.com/hanpama/gqlexec/internal/reqid"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDMetadataKey carries the request id in outgoing gRPC metadata.
const RequestIDMetadataKey = "graphql-request-id"

// Handler is an http.Handler serving one GraphQL endpoint.
type Handler struct {
	exec      *executor.Executor
	validator *ast.Schema
	opt       Options

	forward map[string]bool // lower-cased header names
	origins map[string]bool
}

type Options struct {
	// Timeout bounds requests whose context has no deadline. 0 disables it.
	Timeout time.Duration
	// Pretty indents JSON responses.
	Pretty bool
	// MaxBodyBytes limits the request body. 0 means unlimited.
	MaxBodyBytes int64
	// CORSOrigins lists allowed origins; "*" allows any. Empty disables CORS.
	CORSOrigins []string
	// MetadataHeaders are copied from the HTTP request into the outgoing gRPC
	// metadata of the resolver context.
	MetadataHeaders []string
	// Sync executes with ExecuteRequestSync instead of the asynchronous
	// executor.
	Sync bool
	// Validate checks documents against the schema before execution.
	Validate bool
	// RootValue is the source of every root field.
	RootValue any
	Logger    *zap.Logger
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option     { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                     { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option        { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option      { return func(o *Options) { o.CORSOrigins = origins } }
func WithSyncExecution(sync bool) Option     { return func(o *Options) { o.Sync = sync } }
func WithValidation(validate bool) Option    { return func(o *Options) { o.Validate = validate } }
func WithRootValue(v any) Option             { return func(o *Options) { o.RootValue = v } }
func WithLogger(l *zap.Logger) Option        { return func(o *Options) { o.Logger = l } }
func WithMetadataHeaders(h ...string) Option { return func(o *Options) { o.MetadataHeaders = h } }

// New creates a handler executing operations with exec. The schema is loaded
// through gqlparser for validation unless validation is disabled.
func New(exec *executor.Executor, sch *schema.Schema, opts ...Option) (*Handler, error) {
	o := Options{Timeout: 10 * time.Second, Validate: true, Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	h := &Handler{
		exec:    exec,
		opt:     o,
		forward: make(map[string]bool, len(o.MetadataHeaders)),
		origins: make(map[string]bool, len(o.CORSOrigins)),
	}
	for _, name := range o.MetadataHeaders {
		h.forward[strings.ToLower(name)] = true
	}
	for _, origin := range o.CORSOrigins {
		h.origins[origin] = true
	}
	if o.Validate {
		loaded, err := schema.ToAST(sch)
		if err != nil {
			return nil, fmt.Errorf("load schema for validation: %w", err)
		}
		h.validator = loaded
	}
	return h, nil
}

// GraphQLRequest is one operation request as sent by clients.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// requestError rejects a request before any operation runs.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(msg string) *requestError {
	return &requestError{status: http.StatusBadRequest, message: msg}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	ctx, rid := reqid.NewContext(ctx, r.Header.Get(reqid.Header))
	w.Header().Set(reqid.Header, rid)

	start := time.Now()
	status := http.StatusOK
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	h.applyCORS(w, r)
	if r.Method == http.MethodOptions {
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	reqs, batch, err := decodeRequests(r, h.opt.MaxBodyBytes)
	if err != nil {
		var re *requestError
		if !errors.As(err, &re) {
			re = badRequest(err.Error())
		}
		status = re.status
		h.respond(w, status, &executor.ExecutionResult{Errors: gqlerror.List{gqlerror.Errorf("%s", re.message)}})
		return
	}

	ctx = metadata.NewOutgoingContext(ctx, h.outgoingMetadata(r, rid))
	results := make([]*executor.ExecutionResult, len(reqs))
	for i, req := range reqs {
		var aborted bool
		results[i], aborted = h.executeOne(ctx, req)
		if aborted {
			status = http.StatusInternalServerError
		}
	}
	if batch {
		h.respond(w, status, results)
		return
	}
	h.respond(w, status, results[0])
}

func (h *Handler) outgoingMetadata(r *http.Request, rid string) metadata.MD {
	md := metadata.MD{}
	for name, values := range r.Header {
		if key := strings.ToLower(name); h.forward[key] {
			md[key] = values
		}
	}
	md[RequestIDMetadataKey] = []string{rid}
	return md
}

// executeOne runs a single request. aborted reports an engine failure; the
// result then only carries a generic error.
func (h *Handler) executeOne(ctx context.Context, req GraphQLRequest) (res *executor.ExecutionResult, aborted bool) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return &executor.ExecutionResult{Errors: gqlerror.List{gqlerror.WrapIfUnwrapped(err)}}, false
	}
	if h.validator != nil {
		if errs := language.Validate(h.validator, doc); len(errs) > 0 {
			return &executor.ExecutionResult{Errors: errs}, false
		}
	}

	var opType string
	if op := doc.Operations.ForName(req.OperationName); op != nil {
		opType = string(op.Operation)
	}
	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Sync:          h.opt.Sync,
	})

	params := executor.Params{
		Document:       doc,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		RootValue:      h.opt.RootValue,
	}
	var failure error
	if h.opt.Sync {
		res, failure = h.exec.ExecuteRequestSync(ctx, params)
	} else {
		res = h.exec.ExecuteRequest(ctx, params)
	}
	if failure != nil {
		rid, _ := reqid.FromContext(ctx)
		h.opt.Logger.Error("graphql execution aborted",
			zap.String("request_id", rid),
			zap.String("operation", req.OperationName),
			zap.Error(failure))
		res = &executor.ExecutionResult{Errors: gqlerror.List{gqlerror.Errorf("internal error")}}
	}

	errs := make([]error, len(res.Errors))
	for i, e := range res.Errors {
		errs[i] = e
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Sync:          h.opt.Sync,
		Errors:        errs,
		Aborted:       failure,
		Duration:      time.Since(start),
	})
	return res, failure != nil
}

// decodeRequests reads the operations of r. batch is set when the body held
// a JSON array.
func decodeRequests(r *http.Request, limit int64) (reqs []GraphQLRequest, batch bool, err error) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req := GraphQLRequest{Query: q.Get("query"), OperationName: q.Get("operationName")}
		if raw := q.Get("variables"); raw != "" {
			if err := json.UnmarshalFromString(raw, &req.Variables); err != nil {
				return nil, false, badRequest("invalid 'variables' JSON")
			}
		}
		if req.Query == "" {
			return nil, false, badRequest("missing 'query'")
		}
		return []GraphQLRequest{req}, false, nil
	case http.MethodPost:
	default:
		return nil, false, &requestError{status: http.StatusMethodNotAllowed, message: "method not allowed"}
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return nil, false, badRequest("unsupported Content-Type")
	}
	defer r.Body.Close()
	body := io.Reader(r.Body)
	if limit > 0 {
		body = io.LimitReader(r.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, false, badRequest("failed to read body")
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, false, &requestError{status: http.StatusRequestEntityTooLarge, message: "body too large"}
	}

	batch = len(data) > 0 && data[0] == '['
	if batch {
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, false, badRequest("invalid JSON")
		}
		if len(reqs) == 0 {
			return nil, false, badRequest("empty batch")
		}
		return reqs, true, nil
	}
	var req GraphQLRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, false, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return nil, false, badRequest("missing 'query'")
	}
	return []GraphQLRequest{req}, false, nil
}

func (h *Handler) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		h.opt.Logger.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 {
		return
	}
	switch {
	case h.origins["*"]:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case h.origins[origin]:
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	default:
		return
	}
	if r.Method == http.MethodOptions {
		if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
			w.Header().Set("Access-Control-Allow-Headers", requested)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}
