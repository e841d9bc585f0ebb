package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/hanpama/gqlexec/internal/eventbus"
	"github.com/hanpama/gqlexec/internal/executor"
	"github.com/hanpama/gqlexec/internal/language"
	"github.com/hanpama/gqlexec/internal/otel"
	"github.com/hanpama/gqlexec/internal/pets"
	"github.com/hanpama/gqlexec/internal/schema"
	"github.com/hanpama/gqlexec/internal/server"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const rootUsage = `gqlexec: GraphQL execution engine demo

USAGE:
  gqlexec <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server over the pets schema
  exec             Execute one query against the pets schema and print the result
  print-schema     Print the pets schema as SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>                 HTTP listen address (default: :8080)
  -server.pretty                      Pretty-print JSON responses
  -server.timeout <duration>          Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>            Maximum request body size (default: 1048576)
  -server.cors-origin <origin>        Allowed CORS origin. Repeatable
  -server.metadata-header <name>      Forward HTTP header to gRPC metadata. Repeatable
  -graphql.sync                       Execute operations synchronously
  -graphql.validate <bool>            Validate documents before execution (default: true)
  -graphql.max-concurrency N          Goroutines per selection set or list, 0 = unlimited
  -pets.strategy <name>               is-type-of or resolve-type (default: is-type-of)
  -pets.latency <duration>            Answer resolvers asynchronously after a delay
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: gqlexec)
  -log.level <level>                  debug, info, warn or error (default: info)
  -log.dev                            Human-readable development logging
`

const execUsage = `exec FLAGS:
  -query <document>         GraphQL document (required unless -query.file is set)
  -query.file <file>        Read the document from a file
  -variables <json>         Variable values as a JSON object
  -operation <name>         Operation to run
  -sync                     Execute synchronously
  -pets.strategy <name>     is-type-of or resolve-type (default: is-type-of)
  -pets.latency <duration>  Answer resolvers asynchronously after a delay
  -pretty                   Pretty-print the JSON result
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>   Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "exec":
		return cmdExec(cmdArgs, stdout, stderr)
	case "print-schema":
		return cmdPrintSchema(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "exec":
		fmt.Fprint(stdout, execUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type strategyFlag struct{ s pets.Strategy }

func (f *strategyFlag) String() string {
	if f.s == pets.ResolveType {
		return "resolve-type"
	}
	return "is-type-of"
}

func (f *strategyFlag) Set(v string) error {
	switch v {
	case "is-type-of":
		f.s = pets.IsTypeOf
	case "resolve-type":
		f.s = pets.ResolveType
	default:
		return fmt.Errorf("invalid strategy %q", v)
	}
	return nil
}

func newLogger(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}

func cmdServe(args []string, stderr io.Writer) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	sync := false
	validate := true
	maxConcurrency := 0
	latency := time.Duration(0)
	otelEndpoint := ""
	otelService := "gqlexec"
	logLevel := "info"
	logDev := false
	var corsOrigins, metadataHeaders stringListFlag
	var strategy strategyFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Maximum request body size")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.Var(&metadataHeaders, "server.metadata-header", "Forward HTTP header to gRPC metadata")
	fs.BoolVar(&sync, "graphql.sync", sync, "Execute operations synchronously")
	fs.BoolVar(&validate, "graphql.validate", validate, "Validate documents")
	fs.IntVar(&maxConcurrency, "graphql.max-concurrency", maxConcurrency, "Goroutines per fan-out")
	fs.Var(&strategy, "pets.strategy", "Abstract type resolution strategy")
	fs.DurationVar(&latency, "pets.latency", latency, "Resolver latency")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.BoolVar(&logDev, "log.dev", logDev, "Development logging")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}
	if sync && latency > 0 {
		return fmt.Errorf("-pets.latency cannot be combined with -graphql.sync")
	}

	logger, err := newLogger(logLevel, logDev)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventbus.Use(eventbus.New())
	tracer, shutdown, err := otel.Setup(ctx, otelEndpoint, otelService, logger)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	sch, err := pets.NewSchema(pets.NewStore(), pets.WithStrategy(strategy.s), pets.WithLatency(latency))
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	eopts := []executor.Option{executor.WithLogger(logger), executor.WithMaxConcurrency(maxConcurrency)}
	if tracer != nil {
		eopts = append(eopts, executor.WithTracer(tracer))
	}
	exec := executor.NewExecutor(sch, eopts...)

	sopts := []server.Option{
		server.WithLogger(logger),
		server.WithSyncExecution(sync),
		server.WithValidation(validate),
		server.WithMaxBodyBytes(maxBody),
	}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	if len(metadataHeaders) > 0 {
		sopts = append(sopts, server.WithMetadataHeaders(metadataHeaders...))
	}
	h, err := server.New(exec, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening", zap.String("addr", addr), zap.Bool("sync", sync))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cmdExec(args []string, stdout, stderr io.Writer) error {
	query := ""
	queryFile := ""
	variables := ""
	operation := ""
	sync := false
	latency := time.Duration(0)
	pretty := false
	var strategy strategyFlag

	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&query, "query", query, "GraphQL document")
	fs.StringVar(&queryFile, "query.file", queryFile, "Read the document from a file")
	fs.StringVar(&variables, "variables", variables, "Variable values as JSON")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.BoolVar(&sync, "sync", sync, "Execute synchronously")
	fs.Var(&strategy, "pets.strategy", "Abstract type resolution strategy")
	fs.DurationVar(&latency, "pets.latency", latency, "Resolver latency")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON result")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, execUsage)
		return err
	}
	if queryFile != "" {
		b, err := os.ReadFile(queryFile)
		if err != nil {
			return err
		}
		query = string(b)
	}
	if query == "" {
		fmt.Fprint(stderr, execUsage)
		return fmt.Errorf("-query is required")
	}
	var vars map[string]any
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &vars); err != nil {
			return fmt.Errorf("invalid -variables: %w", err)
		}
	}

	sch, err := pets.NewSchema(pets.NewStore(), pets.WithStrategy(strategy.s), pets.WithLatency(latency))
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	res, err := execute(context.Background(), sch, query, operation, vars, sync)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func execute(ctx context.Context, sch *schema.Schema, query, operation string, vars map[string]any, sync bool) (*executor.ExecutionResult, error) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	validator, err := schema.ToAST(sch)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if errs := language.Validate(validator, doc); len(errs) > 0 {
		return &executor.ExecutionResult{Errors: errs}, nil
	}

	exec := executor.NewExecutor(sch)
	params := executor.Params{Document: doc, OperationName: operation, VariableValues: vars}
	if sync {
		return exec.ExecuteRequestSync(ctx, params)
	}
	return exec.ExecuteRequest(ctx, params), nil
}

func cmdPrintSchema(args []string, stdout, stderr io.Writer) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, printSchemaUsage)
		return err
	}

	sch, err := pets.NewSchema(pets.NewStore())
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		_, err := fmt.Fprint(stdout, sdl)
		return err
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
