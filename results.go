package patentsearch

// Record is a single patent application record as returned by the upstream
// API. Records are not guaranteed to share a schema, so they stay dynamic.
type Record map[string]interface{}

// Results represents a page of search results with metadata.
type Results struct {
	// Records contains the patent application records of this page, extracted
	// from the upstream patentFileWrapperDataBag.
	Records []Record `json:"results"`

	// Count is the total number of matching records upstream.
	Count int `json:"count"`

	// Raw is the full upstream response body, kept for callers that need
	// fields this library does not model.
	Raw map[string]interface{} `json:"-"`
}

// OperationResult is the normalized outcome of every operation. Exactly one
// of Data, CSVData or Message is populated on success; Error is populated on
// failure. Operations never surface panics or raw errors past this type.
type OperationResult struct {
	Success bool     `json:"success"`
	Data    *Results `json:"data,omitempty"`
	CSVData string   `json:"csv_data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Failure builds a failed OperationResult with the given error text.
func Failure(msg string) OperationResult {
	return OperationResult{Success: false, Error: msg}
}

// ExtractRecords pulls patent application records out of a raw upstream
// response body. The current API nests them under patentFileWrapperDataBag;
// older responses carried a results field instead.
func ExtractRecords(raw map[string]interface{}) []Record {
	if raw == nil {
		return nil
	}
	bag, ok := raw["patentFileWrapperDataBag"].([]interface{})
	if !ok {
		bag, ok = raw["results"].([]interface{})
	}
	if !ok {
		return nil
	}
	records := make([]Record, 0, len(bag))
	for _, item := range bag {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, Record(m))
		}
	}
	return records
}
