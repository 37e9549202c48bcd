// Package inmemory provides an in-memory implementation of the
// patentsearch.Searcher interface. It is intended for tests and local
// development where calling the real USPTO Open Data Portal API is
// impractical.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jeremywohl/flatten"
	"github.com/letmevibethatforyou/patentsearch"
)

// record pairs a patent application record with a flattened view of its
// fields, so dotted paths like applicationMetaData.filingDate resolve
// without walking the nested structure on every match.
type record struct {
	id   string
	data patentsearch.Record
	flat map[string]interface{}
}

// Searcher implements the patentsearch.Searcher interface using an
// in-memory store of patent application records.
type Searcher struct {
	mu      sync.RWMutex
	records []record
	idIndex map[string]int // maps record ID to index in records slice
}

var _ patentsearch.Searcher = (*Searcher)(nil)

// New creates a new in-memory searcher.
// The searcher is ready to use and is safe for concurrent operations.
func New() *Searcher {
	return &Searcher{
		records: make([]record, 0),
		idIndex: make(map[string]int),
	}
}

// AddRecord adds a patent application record to the in-memory store.
// If a record with the same ID already exists, it will be updated.
// This method is safe for concurrent use.
func (s *Searcher) AddRecord(id string, data patentsearch.Record) error {
	flat, err := flatten.Flatten(data, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "failed to flatten record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{id: id, data: data, flat: flat}
	if idx, exists := s.idIndex[id]; exists {
		s.records[idx] = rec
	} else {
		s.idIndex[id] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

// AddJSON adds a record to the in-memory store by parsing the provided
// JSON document. This method is safe for concurrent use.
func (s *Searcher) AddJSON(id string, jsonData []byte) error {
	var data patentsearch.Record
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON")
	}
	return s.AddRecord(id, data)
}

// RemoveRecord removes a record by ID from the in-memory store.
// Returns true if the record was found and removed.
// This method is safe for concurrent use.
func (s *Searcher) RemoveRecord(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.idIndex[id]
	if !exists {
		return false
	}

	s.records = append(s.records[:idx], s.records[idx+1:]...)

	delete(s.idIndex, id)
	for i := idx; i < len(s.records); i++ {
		s.idIndex[s.records[i].id] = i
	}
	return true
}

// Clear removes all records from the store.
// This method is safe for concurrent use.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]record, 0)
	s.idIndex = make(map[string]int)
}

// Size returns the number of records currently stored.
// This method is safe for concurrent use.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Search implements the patentsearch.Searcher interface.
func (s *Searcher) Search(ctx context.Context, req *patentsearch.SearchRequest) (*patentsearch.Results, error) {
	select {
	case <-ctx.Done():
		return nil, patentsearch.ErrCanceled
	default:
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []record
	for _, rec := range s.records {
		select {
		case <-ctx.Done():
			return nil, patentsearch.ErrCanceled
		default:
		}

		if !matchesFilters(rec, req.Filters) {
			continue
		}
		if !matchesDateRange(rec, req.Query.DateFrom, req.Query.DateTo) {
			continue
		}
		if !matchesRequest(rec, req) {
			continue
		}
		matches = append(matches, rec)
	}

	sortMatches(matches, req)

	total := len(matches)
	limit := req.LimitOrDefault()
	start := (req.PageOrDefault() - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	results := &patentsearch.Results{
		Records: make([]patentsearch.Record, 0, end-start),
		Count:   total,
	}
	for i := start; i < end; i++ {
		results.Records = append(results.Records, matches[i].data)
	}
	return results, nil
}

// TestConnection implements the patentsearch.Searcher interface. The
// in-memory store is always reachable, so the probe reports the number
// of stored records.
func (s *Searcher) TestConnection(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", patentsearch.ErrCanceled
	default:
	}
	return fmt.Sprintf("API connection successful. Found %d matching patents.", s.Size()), nil
}

// matchesFilters checks whether a record satisfies every filter.
// A filter matches when the record's field equals any of its values.
func matchesFilters(rec record, filters []patentsearch.Filter) bool {
	for _, f := range filters {
		value, exists := rec.flat[f.Name]
		if !exists {
			return false
		}
		matched := false
		for _, want := range f.Value {
			if strings.EqualFold(fmt.Sprintf("%v", value), want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// matchesDateRange checks the record's filing date against an optional
// inclusive date window. ISO-8601 dates compare correctly as strings.
func matchesDateRange(rec record, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	value, exists := rec.flat[patentsearch.FilingDateField]
	if !exists {
		return false
	}
	date := fmt.Sprintf("%v", value)
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// sortMatches orders matched records by the requested sort field,
// falling back to filing date descending.
func sortMatches(matches []record, req *patentsearch.SearchRequest) {
	field := req.SortField
	if field == "" {
		field = patentsearch.DefaultSortField
	}
	desc := req.SortOrder != "asc"

	sort.SliceStable(matches, func(i, j int) bool {
		v1 := fmt.Sprintf("%v", matches[i].flat[field])
		v2 := fmt.Sprintf("%v", matches[j].flat[field])
		if desc {
			return v1 > v2
		}
		return v1 < v2
	})
}
