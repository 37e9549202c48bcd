package patentsearch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/ksuid"
)

// Operation names an entry in the dispatch registry.
type Operation string

const (
	// OpSearch runs a patent search.
	OpSearch Operation = "search"
	// OpExportCSV exports results (given or searched) as CSV text.
	OpExportCSV Operation = "export_csv"
	// OpTestConnection probes upstream API connectivity.
	OpTestConnection Operation = "test_connection"
)

// Operations lists every registered operation.
var Operations = []Operation{OpSearch, OpExportCSV, OpTestConnection}

// OperationParams is the parameter bundle accepted by Run. Which fields are
// consulted depends on the operation: search reads Search, export_csv reads
// Results or Search, test_connection reads nothing.
type OperationParams struct {
	Search  *SearchRequest `json:"search_params,omitempty"`
	Results []Record       `json:"results,omitempty"`
}

// Runner dispatches named operations to their handlers. It is the boundary
// that guarantees callers always receive an OperationResult: handler panics
// are converted to failures and never escape.
type Runner struct {
	searcher Searcher
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for operation logging.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates an operation dispatcher backed by the given searcher.
func NewRunner(searcher Searcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		searcher: searcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a named operation. Unknown names fail without invoking any
// handler; everything else is normalized into an OperationResult.
func (r *Runner) Run(ctx context.Context, op Operation, params *OperationParams) (result OperationResult) {
	id := ksuid.New().String()
	r.logger.InfoContext(ctx, "running operation",
		"operation", string(op),
		"invocation_id", id,
		"has_search_params", params != nil && params.Search != nil,
		"result_count", resultCount(params),
	)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "operation panicked",
				"operation", string(op),
				"invocation_id", id,
				"panic", rec,
			)
			result = Failure(fmt.Sprintf("Operation error: %v", rec))
		}
	}()

	switch op {
	case OpSearch:
		result = r.search(ctx, params)
	case OpExportCSV:
		result = r.exportCSV(ctx, params)
	case OpTestConnection:
		result = r.testConnection(ctx)
	default:
		return Failure(fmt.Sprintf("Unknown operation type: %s", op))
	}

	if !result.Success {
		r.logger.WarnContext(ctx, "operation failed",
			"operation", string(op),
			"invocation_id", id,
			"error", result.Error,
		)
	}
	return result
}

func (r *Runner) search(ctx context.Context, params *OperationParams) OperationResult {
	if params == nil || params.Search == nil {
		return Failure("No search parameters provided")
	}
	return r.runSearch(ctx, params.Search)
}

func (r *Runner) runSearch(ctx context.Context, req *SearchRequest) OperationResult {
	if err := req.Validate(); err != nil {
		return Failure(err.Error())
	}

	results, err := r.searcher.Search(ctx, req)
	if err != nil {
		return Failure(err.Error())
	}

	return OperationResult{Success: true, Data: results}
}

func (r *Runner) testConnection(ctx context.Context) OperationResult {
	msg, err := r.searcher.TestConnection(ctx)
	if err != nil {
		return Failure(err.Error())
	}
	return OperationResult{Success: true, Message: msg}
}

func resultCount(params *OperationParams) int {
	if params == nil {
		return 0
	}
	return len(params.Results)
}
