package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/letmevibethatforyou/patentsearch"
)

func TestParseBooleanTerms(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []patentsearch.BooleanTerm
		wantErr bool
	}{
		{
			name: "bare term",
			raw:  []string{"inventionTitle=battery"},
			want: []patentsearch.BooleanTerm{
				{Field: "inventionTitle", Value: "battery"},
			},
		},
		{
			name: "operator prefix",
			raw:  []string{"inventionTitle=battery", "NOT:inventionTitle=charging"},
			want: []patentsearch.BooleanTerm{
				{Field: "inventionTitle", Value: "battery"},
				{Field: "inventionTitle", Value: "charging", Operator: "NOT"},
			},
		},
		{
			name: "lowercase operator and spaces",
			raw:  []string{" or : inventorNameText = Grace Hopper "},
			want: []patentsearch.BooleanTerm{
				{Field: "inventorNameText", Value: "Grace Hopper", Operator: "or"},
			},
		},
		{name: "empty input", raw: nil, want: nil},
		{name: "missing equals", raw: []string{"inventionTitle"}, wantErr: true},
		{name: "empty term", raw: []string{"  "}, wantErr: true},
		{name: "empty value", raw: []string{"inventionTitle="}, wantErr: true},
		{name: "empty field", raw: []string{"AND:=battery"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBooleanTerms(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBooleanTerms failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseFilters(t *testing.T) {
	got, err := parseFilters([]string{"applicationMetaData.applicationStatusDescriptionText=Patented Case"})
	if err != nil {
		t.Fatalf("parseFilters failed: %v", err)
	}
	want := []patentsearch.Filter{
		{Name: "applicationMetaData.applicationStatusDescriptionText", Value: []string{"Patented Case"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	for _, bad := range []string{"", "no-equals", "=value", "name="} {
		if _, err := parseFilters([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.jsonl")
	data := `{"id":"17000001","record":{"inventionTitle":"Battery Electrode","applicationMetaData":{"filingDate":"2021-03-15"}}}
{"id":"17000002","record":{"inventionTitle":"Solar Panel Bracket","applicationMetaData":{"filingDate":"2020-11-30"}}}
{"record":{"inventionTitle":"Turbine Blade"}}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	searcher, err := loadFixture(path)
	if err != nil {
		t.Fatalf("loadFixture failed: %v", err)
	}
	if searcher.Size() != 3 {
		t.Fatalf("expected 3 records, got %d", searcher.Size())
	}

	// The fixture-backed searcher serves real search requests.
	results, err := searcher.Search(context.Background(), &patentsearch.SearchRequest{
		Type:  patentsearch.SearchSimple,
		Query: patentsearch.QueryParams{Term: "battery"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results.Count != 1 {
		t.Errorf("expected 1 match, got %d", results.Count)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	if _, err := loadFixture(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{not json\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := loadFixture(path); err == nil {
		t.Error("expected error for malformed fixture")
	}
}
