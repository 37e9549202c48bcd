package patentsearch

import "context"

// Searcher defines the core patent search interface.
type Searcher interface {
	// Search executes a typed search request and returns a page of records.
	Search(ctx context.Context, req *SearchRequest) (*Results, error)

	// TestConnection probes the upstream API with a known-good request and
	// returns a human-readable status message.
	TestConnection(ctx context.Context) (string, error)
}

// SearcherFunc adapts a function to the Searcher Search method, similar to
// http.HandlerFunc. TestConnection on a SearcherFunc reports success without
// touching any backend.
type SearcherFunc func(context.Context, *SearchRequest) (*Results, error)

// Search implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) Search(ctx context.Context, req *SearchRequest) (*Results, error) {
	return f(ctx, req)
}

// TestConnection implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) TestConnection(ctx context.Context) (string, error) {
	return "connection check not supported by this searcher", nil
}
