package patentsearch

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestSearchRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SearchRequest
		wantErr string
	}{
		{
			name: "valid simple search",
			req: SearchRequest{
				Type:  SearchSimple,
				Query: QueryParams{Term: "battery"},
			},
		},
		{
			name: "mixed-case boolean operators accepted",
			req: SearchRequest{
				Type: SearchBoolean,
				Query: QueryParams{Terms: []BooleanTerm{
					{Field: "title", Value: "battery"},
					{Field: "title", Value: "pack", Operator: "And"},
					{Field: "status", Value: "active", Operator: "Not"},
				}},
			},
		},
		{
			name: "valid with pagination and sort",
			req: SearchRequest{
				Type:      SearchBoolean,
				Query:     QueryParams{Terms: []BooleanTerm{{Field: "title", Value: "x", Operator: "AND"}}},
				Page:      3,
				Limit:     50,
				SortOrder: "asc",
			},
		},
		{
			name:    "missing type",
			req:     SearchRequest{},
			wantErr: "search_type is required",
		},
		{
			name:    "unknown type",
			req:     SearchRequest{Type: "fuzzy"},
			wantErr: `value "fuzzy" for search_type not recognized`,
		},
		{
			name:    "negative page",
			req:     SearchRequest{Type: SearchSimple, Page: -1},
			wantErr: "page cannot be less than 1",
		},
		{
			name:    "limit over maximum",
			req:     SearchRequest{Type: SearchSimple, Limit: 101},
			wantErr: "limit cannot be greater than 100",
		},
		{
			name:    "negative limit",
			req:     SearchRequest{Type: SearchSimple, Limit: -5},
			wantErr: "limit cannot be less than 1",
		},
		{
			name:    "bad sort order",
			req:     SearchRequest{Type: SearchSimple, SortOrder: "descending"},
			wantErr: `value "descending" for sort_order not recognized`,
		},
		{
			name: "bad date format",
			req: SearchRequest{
				Type:  SearchSimple,
				Query: QueryParams{DateFrom: "01/02/2020"},
			},
			wantErr: "dateFrom must be a date in 2006-01-02 format",
		},
		{
			name: "bad boolean operator",
			req: SearchRequest{
				Type: SearchBoolean,
				Query: QueryParams{Terms: []BooleanTerm{
					{Field: "title", Value: "x"},
					{Field: "title", Value: "y", Operator: "XOR"},
				}},
			},
			wantErr: `value "XOR" for operator not recognized`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to contain %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestPageAndLimitDefaults(t *testing.T) {
	r := &SearchRequest{}
	if r.PageOrDefault() != 1 {
		t.Errorf("expected default page 1, got %d", r.PageOrDefault())
	}
	if r.LimitOrDefault() != MaxResultsPerPage {
		t.Errorf("expected default limit %d, got %d", MaxResultsPerPage, r.LimitOrDefault())
	}

	r = &SearchRequest{Page: 4, Limit: 10}
	if r.PageOrDefault() != 4 {
		t.Errorf("expected page 4, got %d", r.PageOrDefault())
	}
	if r.LimitOrDefault() != 10 {
		t.Errorf("expected limit 10, got %d", r.LimitOrDefault())
	}
}
