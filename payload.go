package patentsearch

import "strings"

// Filter is an exact-match filter on a named field.
type Filter struct {
	Name  string   `json:"name"`
	Value []string `json:"value"`
}

// RangeFilter is an inclusive interval filter on a named field.
type RangeFilter struct {
	Field     string `json:"field"`
	ValueFrom string `json:"valueFrom"`
	ValueTo   string `json:"valueTo"`
}

// Pagination is the upstream offset/limit window.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SortSpec orders results by a single field.
type SortSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Payload is the wire-format request body for the upstream search endpoint.
// Struct field order fixes the JSON key order, which keeps encoded payloads
// byte-stable for identical inputs.
type Payload struct {
	Fields       []string      `json:"fields"`
	Filters      []Filter      `json:"filters"`
	Pagination   Pagination    `json:"pagination"`
	Q            string        `json:"q"`
	RangeFilters []RangeFilter `json:"rangeFilters,omitempty"`
	Sort         []SortSpec    `json:"sort"`
	Facets       []string      `json:"facets,omitempty"`
}

// BuildPayload translates a search request into the upstream wire payload.
// The query string is never left empty; anything that produces no usable
// query term falls back to the match-all wildcard.
func BuildPayload(req *SearchRequest) Payload {
	page := req.PageOrDefault()
	limit := req.LimitOrDefault()

	sortField := req.SortField
	if sortField == "" {
		sortField = DefaultSortField
	}
	sortOrder := req.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	fields := req.Fields
	if len(fields) == 0 {
		fields = DefaultFields()
	}

	p := Payload{
		Fields:  fields,
		Filters: append(BaseFilters(), req.Filters...),
		Pagination: Pagination{
			Offset: (page - 1) * limit,
			Limit:  limit,
		},
		Sort: []SortSpec{{Field: sortField, Direction: sortOrder}},
	}

	if req.Type == SearchSimple {
		p.Q = req.Query.Term
	} else {
		p.Q = "*"
	}

	// A caller-supplied date range rides along with every search type.
	if req.Query.DateFrom != "" && req.Query.DateTo != "" {
		p.RangeFilters = []RangeFilter{{
			Field:     FilingDateField,
			ValueFrom: req.Query.DateFrom,
			ValueTo:   req.Query.DateTo,
		}}
	}

	switch req.Type {
	case SearchBoolean:
		p.Q = booleanQuery(req.Query.Terms)

	case SearchWildcard:
		field := req.Query.Field
		if field == "" {
			field = DefaultTitleField
		}
		p.Q = field + ":" + req.Query.Value

	case SearchFieldSpecific:
		if req.Query.Field == "" || req.Query.Value == "" {
			p.Q = ""
		} else {
			p.Q = req.Query.Field + ":" + req.Query.Value
		}

	case SearchRange:
		field := req.Query.Field
		if field == "" {
			field = FilingDateField
		}
		if req.Query.ValueFrom != "" && req.Query.ValueTo != "" {
			p.RangeFilters = upsertRangeFilter(p.RangeFilters, RangeFilter{
				Field:     field,
				ValueFrom: req.Query.ValueFrom,
				ValueTo:   req.Query.ValueTo,
			})
		}

	case SearchFiltered:
		if req.Query.Field != "" && req.Query.Value != "" {
			p.Filters = append(p.Filters, Filter{
				Name:  req.Query.Field,
				Value: []string{req.Query.Value},
			})
		}

	case SearchFaceted:
		if len(req.Query.Facets) > 0 {
			p.Facets = req.Query.Facets
		}
	}

	if p.Q == "" {
		p.Q = "*"
	}

	return p
}

// booleanQuery joins terms into the upstream query grammar. The first term
// carries no operator; NOT replaces the joining operator rather than
// following one.
func booleanQuery(terms []BooleanTerm) string {
	parts := make([]string, 0, len(terms))
	for i, term := range terms {
		if term.Field == "" || term.Value == "" {
			continue
		}
		pair := term.Field + ":" + term.Value
		if i == 0 || term.Operator == "" {
			parts = append(parts, pair)
			continue
		}
		op := strings.ToUpper(term.Operator)
		if op == "NOT" {
			parts = append(parts, "NOT "+pair)
		} else {
			parts = append(parts, op+" "+pair)
		}
	}
	q := strings.Join(parts, " ")
	if q == "" {
		return "*"
	}
	return q
}

// upsertRangeFilter replaces an existing filter on the same field in place,
// preserving list position; otherwise it appends.
func upsertRangeFilter(filters []RangeFilter, rf RangeFilter) []RangeFilter {
	for i, existing := range filters {
		if existing.Field == rf.Field {
			filters[i] = rf
			return filters
		}
	}
	return append(filters, rf)
}
