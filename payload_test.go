package patentsearch

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuildPayloadDefaults(t *testing.T) {
	p := BuildPayload(&SearchRequest{Type: SearchSimple})

	if p.Q != "*" {
		t.Errorf("expected match-all query, got %q", p.Q)
	}
	if p.Pagination.Offset != 0 || p.Pagination.Limit != MaxResultsPerPage {
		t.Errorf("unexpected pagination %+v", p.Pagination)
	}
	if len(p.Fields) == 0 {
		t.Error("expected default fields")
	}
	if len(p.Filters) == 0 {
		t.Error("expected base filters")
	}
	if len(p.Sort) != 1 || p.Sort[0].Field != DefaultSortField || p.Sort[0].Direction != "desc" {
		t.Errorf("unexpected sort %+v", p.Sort)
	}
}

func TestBuildPayloadOffset(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{name: "first page", page: 1, limit: 25, wantOffset: 0, wantLimit: 25},
		{name: "third page", page: 3, limit: 20, wantOffset: 40, wantLimit: 20},
		{name: "zero page defaults to first", page: 0, limit: 10, wantOffset: 0, wantLimit: 10},
		{name: "zero limit defaults to max", page: 2, limit: 0, wantOffset: 100, wantLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPayload(&SearchRequest{Type: SearchSimple, Page: tt.page, Limit: tt.limit})
			if p.Pagination.Offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, p.Pagination.Offset)
			}
			if p.Pagination.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, p.Pagination.Limit)
			}
		})
	}
}

func TestBuildPayloadQueryNeverEmpty(t *testing.T) {
	for _, st := range SearchTypes {
		t.Run(string(st), func(t *testing.T) {
			p := BuildPayload(&SearchRequest{Type: st})
			if p.Q == "" {
				t.Errorf("search type %s produced an empty query", st)
			}
		})
	}
}

func TestBuildPayloadSimple(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type:  SearchSimple,
		Query: QueryParams{Term: "solid state battery"},
	})
	if p.Q != "solid state battery" {
		t.Errorf("expected term passthrough, got %q", p.Q)
	}
}

func TestBuildPayloadBoolean(t *testing.T) {
	tests := []struct {
		name  string
		terms []BooleanTerm
		want  string
	}{
		{
			name: "and join",
			terms: []BooleanTerm{
				{Field: "inventionTitle", Value: "battery"},
				{Field: "inventionTitle", Value: "electrode", Operator: "AND"},
			},
			want: "inventionTitle:battery AND inventionTitle:electrode",
		},
		{
			name: "not replaces the operator",
			terms: []BooleanTerm{
				{Field: "title", Value: "battery"},
				{Field: "status", Value: "active", Operator: "NOT"},
			},
			want: "title:battery NOT status:active",
		},
		{
			name: "lowercase operators uppercased",
			terms: []BooleanTerm{
				{Field: "title", Value: "battery"},
				{Field: "title", Value: "solar", Operator: "or"},
			},
			want: "title:battery OR title:solar",
		},
		{
			name: "first term operator ignored",
			terms: []BooleanTerm{
				{Field: "title", Value: "battery", Operator: "AND"},
				{Field: "title", Value: "pack", Operator: "AND"},
			},
			want: "title:battery AND title:pack",
		},
		{
			name: "missing operator emits bare pair",
			terms: []BooleanTerm{
				{Field: "title", Value: "battery"},
				{Field: "title", Value: "pack"},
			},
			want: "title:battery title:pack",
		},
		{
			name: "blank terms skipped",
			terms: []BooleanTerm{
				{Field: "", Value: "battery"},
				{Field: "title", Value: ""},
				{Field: "title", Value: "pack", Operator: "AND"},
			},
			want: "AND title:pack",
		},
		{
			name:  "no valid terms",
			terms: []BooleanTerm{{Field: "", Value: ""}},
			want:  "*",
		},
		{
			name:  "empty terms",
			terms: nil,
			want:  "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPayload(&SearchRequest{
				Type:  SearchBoolean,
				Query: QueryParams{Terms: tt.terms},
			})
			if p.Q != tt.want {
				t.Errorf("expected query %q, got %q", tt.want, p.Q)
			}
		})
	}
}

func TestBuildPayloadWildcard(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type:  SearchWildcard,
		Query: QueryParams{Value: "batter*"},
	})
	if p.Q != DefaultTitleField+":batter*" {
		t.Errorf("expected default title field, got %q", p.Q)
	}

	p = BuildPayload(&SearchRequest{
		Type:  SearchWildcard,
		Query: QueryParams{Field: "inventorNameText", Value: "lovel*"},
	})
	if p.Q != "inventorNameText:lovel*" {
		t.Errorf("expected explicit field, got %q", p.Q)
	}
}

func TestBuildPayloadFieldSpecific(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type:  SearchFieldSpecific,
		Query: QueryParams{Field: "applicationNumberText", Value: "17123456"},
	})
	if p.Q != "applicationNumberText:17123456" {
		t.Errorf("unexpected query %q", p.Q)
	}

	// Either half missing falls back to match-all.
	p = BuildPayload(&SearchRequest{
		Type:  SearchFieldSpecific,
		Query: QueryParams{Field: "applicationNumberText"},
	})
	if p.Q != "*" {
		t.Errorf("expected match-all for missing value, got %q", p.Q)
	}
}

func TestBuildPayloadRange(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type:  SearchRange,
		Query: QueryParams{ValueFrom: "2020-01-01", ValueTo: "2021-12-31"},
	})
	if p.Q != "*" {
		t.Errorf("expected match-all query, got %q", p.Q)
	}
	if len(p.RangeFilters) != 1 {
		t.Fatalf("expected 1 range filter, got %d", len(p.RangeFilters))
	}
	rf := p.RangeFilters[0]
	if rf.Field != FilingDateField || rf.ValueFrom != "2020-01-01" || rf.ValueTo != "2021-12-31" {
		t.Errorf("unexpected range filter %+v", rf)
	}

	// Missing a bound drops the filter entirely.
	p = BuildPayload(&SearchRequest{
		Type:  SearchRange,
		Query: QueryParams{ValueFrom: "2020-01-01"},
	})
	if len(p.RangeFilters) != 0 {
		t.Errorf("expected no range filters, got %+v", p.RangeFilters)
	}
}

func TestBuildPayloadRangeReplacesDateWindow(t *testing.T) {
	// A range search on the filing date replaces the date-window filter in
	// place instead of duplicating the field.
	p := BuildPayload(&SearchRequest{
		Type: SearchRange,
		Query: QueryParams{
			DateFrom:  "2019-01-01",
			DateTo:    "2019-12-31",
			ValueFrom: "2020-01-01",
			ValueTo:   "2021-12-31",
		},
	})
	if len(p.RangeFilters) != 1 {
		t.Fatalf("expected 1 range filter, got %d", len(p.RangeFilters))
	}
	if p.RangeFilters[0].ValueFrom != "2020-01-01" {
		t.Errorf("expected range bounds to win, got %+v", p.RangeFilters[0])
	}

	// A range on a different field keeps both filters.
	p = BuildPayload(&SearchRequest{
		Type: SearchRange,
		Query: QueryParams{
			DateFrom:  "2019-01-01",
			DateTo:    "2019-12-31",
			Field:     "applicationMetaData.grantDate",
			ValueFrom: "2020-01-01",
			ValueTo:   "2021-12-31",
		},
	})
	if len(p.RangeFilters) != 2 {
		t.Fatalf("expected 2 range filters, got %d", len(p.RangeFilters))
	}
	if p.RangeFilters[0].Field != FilingDateField {
		t.Errorf("expected date window first, got %+v", p.RangeFilters[0])
	}
}

func TestBuildPayloadFiltered(t *testing.T) {
	base := len(BaseFilters())

	p := BuildPayload(&SearchRequest{
		Type: SearchFiltered,
		Query: QueryParams{
			Term:  "battery",
			Field: "applicationMetaData.applicationStatusDescriptionText",
			Value: "Patented Case",
		},
	})
	if len(p.Filters) != base+1 {
		t.Fatalf("expected %d filters, got %d", base+1, len(p.Filters))
	}
	added := p.Filters[len(p.Filters)-1]
	if added.Name != "applicationMetaData.applicationStatusDescriptionText" {
		t.Errorf("unexpected filter name %q", added.Name)
	}
	if len(added.Value) != 1 || added.Value[0] != "Patented Case" {
		t.Errorf("unexpected filter value %v", added.Value)
	}

	// Half-specified filters are dropped.
	p = BuildPayload(&SearchRequest{
		Type:  SearchFiltered,
		Query: QueryParams{Term: "battery", Field: "status"},
	})
	if len(p.Filters) != base {
		t.Errorf("expected only base filters, got %d", len(p.Filters))
	}
}

func TestBuildPayloadFaceted(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type:  SearchFaceted,
		Query: QueryParams{Facets: []string{"applicationMetaData.applicationTypeLabelName"}},
	})
	if len(p.Facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(p.Facets))
	}

	p = BuildPayload(&SearchRequest{Type: SearchFaceted})
	if p.Facets != nil {
		t.Errorf("expected no facets, got %v", p.Facets)
	}
}

func TestBuildPayloadCustomFiltersAppended(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type:    SearchSimple,
		Query:   QueryParams{Term: "battery"},
		Filters: []Filter{{Name: "inventorNameText", Value: []string{"Lovelace"}}},
	})
	base := len(BaseFilters())
	if len(p.Filters) != base+1 {
		t.Fatalf("expected %d filters, got %d", base+1, len(p.Filters))
	}
	if p.Filters[len(p.Filters)-1].Name != "inventorNameText" {
		t.Errorf("expected custom filter appended last, got %+v", p.Filters)
	}
}

func TestPayloadJSONKeyOrder(t *testing.T) {
	p := BuildPayload(&SearchRequest{
		Type: SearchSimple,
		Query: QueryParams{
			Term:     "battery",
			DateFrom: "2020-01-01",
			DateTo:   "2020-12-31",
		},
	})

	encoded, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	body := string(encoded)
	keys := []string{`"fields"`, `"filters"`, `"pagination"`, `"q"`, `"rangeFilters"`, `"sort"`}
	last := -1
	for _, key := range keys {
		idx := strings.Index(body, key)
		if idx < 0 {
			t.Fatalf("key %s missing from payload %s", key, body)
		}
		if idx < last {
			t.Errorf("key %s out of order in payload %s", key, body)
		}
		last = idx
	}

	// Encoding is deterministic for identical inputs.
	again, err := json.Marshal(BuildPayload(&SearchRequest{
		Type: SearchSimple,
		Query: QueryParams{
			Term:     "battery",
			DateFrom: "2020-01-01",
			DateTo:   "2020-12-31",
		},
	}))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if body != string(again) {
		t.Error("identical requests produced different payload bytes")
	}
}
