package patentsearch

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// SearchType selects how query parameters are translated into the upstream
// query language.
type SearchType string

const (
	// SearchSimple sends the term as the query string verbatim.
	SearchSimple SearchType = "simple"
	// SearchBoolean joins field:value terms with boolean operators.
	SearchBoolean SearchType = "boolean"
	// SearchWildcard targets a single field with a wildcard-bearing value.
	SearchWildcard SearchType = "wildcard"
	// SearchFieldSpecific targets a single field with an exact value.
	SearchFieldSpecific SearchType = "field_specific"
	// SearchRange expresses an inclusive interval on a named field.
	SearchRange SearchType = "range"
	// SearchFiltered adds a field/value pair to the payload filters.
	SearchFiltered SearchType = "filtered"
	// SearchFaceted attaches facet names to the payload.
	SearchFaceted SearchType = "faceted"
)

// SearchTypes lists every supported search type.
var SearchTypes = []SearchType{
	SearchSimple,
	SearchBoolean,
	SearchWildcard,
	SearchFieldSpecific,
	SearchRange,
	SearchFiltered,
	SearchFaceted,
}

// BooleanTerm is a single field:value term of a boolean search.
type BooleanTerm struct {
	Field string `json:"field"`
	Value string `json:"value"`
	// Operator joins this term to the preceding one (AND, OR, NOT, any case).
	// The first term and terms without an operator are emitted bare.
	Operator string `json:"operator,omitempty" validate:"omitempty,booleanop"`
}

// QueryParams holds the per-search-type query inputs. Only the fields
// relevant to the request's SearchType are consulted; DateFrom/DateTo apply
// to every search type.
type QueryParams struct {
	// Term is the query string for simple searches.
	Term string `json:"term,omitempty"`
	// Terms are the boolean search terms, in order.
	Terms []BooleanTerm `json:"terms,omitempty" validate:"dive"`
	// Field and Value drive wildcard, field_specific, range and filtered searches.
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
	// ValueFrom and ValueTo bound range searches (inclusive).
	ValueFrom string `json:"valueFrom,omitempty"`
	ValueTo   string `json:"valueTo,omitempty"`
	// Facets are attached verbatim for faceted searches.
	Facets []string `json:"facets,omitempty"`
	// DateFrom and DateTo, when both set, add a filing-date range filter
	// regardless of search type.
	DateFrom string `json:"dateFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `json:"dateTo,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SearchRequest is a fully typed search against the upstream patent API.
type SearchRequest struct {
	Type  SearchType  `json:"search_type" validate:"required,oneof=simple boolean wildcard field_specific range filtered faceted"`
	Query QueryParams `json:"query_params"`

	// Page is 1-based; zero means page 1.
	Page int `json:"page,omitempty" validate:"omitempty,min=1"`
	// Limit is the page size; zero means MaxResultsPerPage.
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`

	SortField string `json:"sort_field,omitempty"`
	SortOrder string `json:"sort_order,omitempty" validate:"omitempty,oneof=asc desc"`

	// Fields selects which record fields the upstream should return.
	Fields []string `json:"fields,omitempty"`
	// Filters are appended to the base payload filters.
	Filters []Filter `json:"filters,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Operators validate case-insensitively; the payload builder uppercases
	// them before they reach the wire.
	_ = validate.RegisterValidation("booleanop", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "AND", "OR", "NOT":
			return true
		}
		return false
	})
}

// Validate checks the request against the invariants the payload builder
// relies on. All violations are reported as a single ErrInvalidRequest.
func (r *SearchRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Mark(err, ErrInvalidRequest)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			switch e.Tag() {
			case "oneof":
				msgs = append(msgs, "value "+quoteValue(e.Value())+" for "+e.Field()+" not recognized, only support "+quote(e.Param()))
			case "booleanop":
				msgs = append(msgs, "value "+quoteValue(e.Value())+" for "+e.Field()+" not recognized, only support "+quote(strings.Join(BooleanOperators, " ")))
			case "min":
				msgs = append(msgs, e.Field()+" cannot be less than "+e.Param())
			case "max":
				msgs = append(msgs, e.Field()+" cannot be greater than "+e.Param())
			case "datetime":
				msgs = append(msgs, e.Field()+" must be a date in "+e.Param()+" format")
			case "required":
				msgs = append(msgs, e.Field()+" is required")
			default:
				msgs = append(msgs, e.Error())
			}
		}
		return errors.Mark(errors.New(strings.Join(msgs, " and ")), ErrInvalidRequest)
	}
	return nil
}

// PageOrDefault returns the effective 1-based page.
func (r *SearchRequest) PageOrDefault() int {
	if r.Page < 1 {
		return 1
	}
	return r.Page
}

// LimitOrDefault returns the effective page size.
func (r *SearchRequest) LimitOrDefault() int {
	if r.Limit < 1 {
		return MaxResultsPerPage
	}
	return r.Limit
}

func quote(s string) string {
	return `"` + s + `"`
}

func quoteValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return quote(s)
	}
	if st, ok := v.(SearchType); ok {
		return quote(string(st))
	}
	return quote("")
}
