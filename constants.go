package patentsearch

// Defaults and limits for requests against the USPTO patent applications API.
const (
	// SearchEndpoint is the production patent applications search endpoint.
	SearchEndpoint = "https://api.uspto.gov/api/v1/patent/applications/search"

	// MaxResultsPerPage is the largest page size accepted from a caller.
	MaxResultsPerPage = 100

	// ExportBatchLimit is the page size forced onto searches performed for a
	// CSV export. Exports do not paginate; result sets larger than this are
	// truncated.
	ExportBatchLimit = 100

	// DefaultSortField orders results by filing date unless the caller asks
	// for something else.
	DefaultSortField = "applicationMetaData.filingDate"

	// DefaultTitleField is the field wildcard searches target when none is given.
	DefaultTitleField = "inventionTitle"

	// FilingDateField carries caller-supplied date ranges for every search type.
	FilingDateField = "applicationMetaData.filingDate"
)

// DefaultFields are the record fields requested when the caller does not
// select their own.
func DefaultFields() []string {
	return []string{
		"inventionTitle",
		"applicationNumberText",
		"applicationMetaData",
		"inventorNameText",
	}
}

// BaseFilters are applied to every search payload before any
// caller-supplied filters.
func BaseFilters() []Filter {
	return []Filter{
		{
			Name:  "applicationMetaData.applicationTypeLabelName",
			Value: []string{"Utility"},
		},
	}
}

// BooleanOperators lists the operators accepted between boolean search terms.
var BooleanOperators = []string{"AND", "OR", "NOT"}

// APIEndpoints catalogs the USPTO Open Data Portal endpoints this tool knows
// about, keyed by a stable name fit for clients and UIs.
var APIEndpoints = map[string]string{
	"applications_search": SearchEndpoint,
	"application_data":    "https://api.uspto.gov/api/v1/patent/applications/{applicationNumberText}",
	"status_codes":        "https://api.uspto.gov/api/v1/patent/status-codes",
	"datasets_products":   "https://api.uspto.gov/api/v1/datasets/products/search",
}

// ValidFields maps each search type to the fields a caller may target with it.
var ValidFields = map[SearchType][]string{
	SearchSimple: {
		"inventionTitle",
		"applicationNumberText",
		"inventorNameText",
	},
	SearchBoolean: {
		"inventionTitle",
		"applicationNumberText",
		"inventorNameText",
		"applicationMetaData.applicationStatusDescriptionText",
		"applicationMetaData.applicationTypeLabelName",
	},
	SearchWildcard: {
		"inventionTitle",
		"inventorNameText",
	},
	SearchFieldSpecific: {
		"inventionTitle",
		"applicationNumberText",
		"inventorNameText",
		"applicationMetaData.applicationStatusDescriptionText",
	},
	SearchRange: {
		"applicationMetaData.filingDate",
		"applicationMetaData.effectiveFilingDate",
		"applicationMetaData.grantDate",
	},
	SearchFiltered: {
		"applicationMetaData.applicationTypeLabelName",
		"applicationMetaData.applicationStatusDescriptionText",
		"applicationMetaData.patentClassificationBag",
	},
	SearchFaceted: {
		"applicationMetaData.applicationTypeLabelName",
		"applicationMetaData.applicationStatusDescriptionText",
	},
}

// FieldDisplayNames maps wire field paths to names fit for a UI.
var FieldDisplayNames = map[string]string{
	"inventionTitle":        "Invention Title",
	"applicationNumberText": "Application Number",
	"inventorNameText":      "Inventor Name",
	"applicationMetaData.filingDate":                       "Filing Date",
	"applicationMetaData.effectiveFilingDate":              "Effective Filing Date",
	"applicationMetaData.grantDate":                        "Grant Date",
	"applicationMetaData.applicationTypeLabelName":         "Application Type",
	"applicationMetaData.applicationStatusDescriptionText": "Application Status",
	"applicationMetaData.patentClassificationBag":          "Patent Classification",
}

// DisplayName returns the UI name for a wire field path, falling back to the
// path itself when no mapping exists.
func DisplayName(field string) string {
	if name, ok := FieldDisplayNames[field]; ok {
		return name
	}
	return field
}
