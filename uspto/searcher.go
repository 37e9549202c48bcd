package uspto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/letmevibethatforyou/patentsearch"
)

// Searcher implements the patentsearch.Searcher interface against the USPTO
// Open Data Portal API.
type Searcher struct {
	client *Client
}

// NewSearcher creates a USPTO-backed searcher.
func NewSearcher(client *Client) *Searcher {
	return &Searcher{client: client}
}

// Search implements the patentsearch.Searcher interface.
func (s *Searcher) Search(ctx context.Context, req *patentsearch.SearchRequest) (*patentsearch.Results, error) {
	ctx, span := s.client.tracer.Start(ctx, "uspto.search",
		trace.WithAttributes(
			attribute.String("uspto.search_type", string(req.Type)),
			attribute.Int("uspto.page", req.PageOrDefault()),
			attribute.Int("uspto.limit", req.LimitOrDefault()),
		),
	)
	defer span.End()

	select {
	case <-ctx.Done():
		return nil, patentsearch.ErrCanceled
	default:
	}

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid search request")
		return nil, err
	}

	payload := patentsearch.BuildPayload(req)

	data, err := s.client.post(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "USPTO search failed")
		return nil, err
	}

	results := resultsFromResponse(data)
	span.SetAttributes(
		attribute.Int("uspto.result_count", len(results.Records)),
		attribute.Int("uspto.total_count", results.Count),
	)
	span.SetStatus(codes.Ok, "search completed")
	return results, nil
}

// TestConnection implements the patentsearch.Searcher interface. It issues a
// single probe request without retries and humanizes the well-known upstream
// failure modes.
func (s *Searcher) TestConnection(ctx context.Context) (string, error) {
	ctx, span := s.client.tracer.Start(ctx, "uspto.test_connection")
	defer span.End()

	secrets, err := s.client.credentials()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing credentials")
		return "", err
	}

	body, err := json.Marshal(probePayload())
	if err != nil {
		return "", errors.Wrap(err, "failed to encode probe payload")
	}

	resp, err := s.client.do(ctx, secrets.APIKey, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "connection failed")
		return "", errors.Mark(
			errors.Wrap(err, "Connection error"),
			patentsearch.ErrUpstream,
		)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var data map[string]interface{}
		decodeErr := json.NewDecoder(resp.Body).Decode(&data)
		drain(resp)
		if decodeErr != nil {
			span.SetStatus(codes.Ok, "connected, unparseable body")
			return "API connection successful, but error parsing response", nil
		}
		total := 0
		if count, ok := data["count"].(float64); ok {
			total = int(count)
		}
		span.SetAttributes(attribute.Int("uspto.total_count", total))
		span.SetStatus(codes.Ok, "connected")
		return fmt.Sprintf("API connection successful. Found %d matching patents.", total), nil

	case http.StatusForbidden:
		drain(resp)
		err := errors.Mark(
			errors.New("API Key is invalid or unauthorized"),
			patentsearch.ErrUpstream,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unauthorized")
		return "", err

	case http.StatusNotFound:
		drain(resp)
		err := errors.Mark(
			errors.New("No matching records found or invalid endpoint"),
			patentsearch.ErrUpstream,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "not found")
		return "", err

	default:
		snippet := bodySnippet(resp.Body)
		drain(resp)
		err := errors.Mark(
			errors.Newf("API error: %d - %s", resp.StatusCode, snippet),
			patentsearch.ErrUpstream,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "probe failed")
		return "", err
	}
}

// probePayload is a known-good minimal request used only for connectivity
// checks. It deliberately stays smaller than a full search payload.
func probePayload() interface{} {
	return struct {
		Q          string                  `json:"q"`
		Filters    []patentsearch.Filter   `json:"filters"`
		Pagination patentsearch.Pagination `json:"pagination"`
		Fields     []string                `json:"fields"`
	}{
		Q: "applicationMetaData.applicationTypeLabelName:Utility",
		Filters: []patentsearch.Filter{
			{
				Name:  "applicationMetaData.applicationStatusDescriptionText",
				Value: []string{"Patented Case"},
			},
		},
		Pagination: patentsearch.Pagination{Offset: 0, Limit: 1},
		Fields: []string{
			"applicationNumberText",
			"applicationMetaData.filingDate",
		},
	}
}

// resultsFromResponse shapes a raw upstream body into Results, preferring the
// patentFileWrapperDataBag records and keeping the raw body for callers that
// need unmapped fields.
func resultsFromResponse(data map[string]interface{}) *patentsearch.Results {
	results := &patentsearch.Results{
		Records: patentsearch.ExtractRecords(data),
		Raw:     data,
	}
	if count, ok := data["count"].(float64); ok {
		results.Count = int(count)
	}
	return results
}
