package patentsearch

import (
	"bytes"
	"context"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/jeremywohl/flatten"
)

// FormatCSV renders records as CSV text. Nested fields become dot-joined
// column names; the header is the sorted union of keys across all records,
// so records with differing shapes line up and missing fields render as
// empty cells. Identical input always produces identical output.
func FormatCSV(records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	flats := make([]map[string]interface{}, len(records))
	keySet := make(map[string]struct{})
	for i, rec := range records {
		flat, err := flatten.Flatten(rec, "", flatten.DotStyle)
		if err != nil {
			return "", errors.Wrapf(err, "failed to flatten record %d", i)
		}
		flats[i] = flat
		for k := range flat {
			keySet[k] = struct{}{}
		}
	}

	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", errors.Wrap(err, "failed to write CSV header")
	}

	row := make([]string, len(header))
	for _, flat := range flats {
		for i, key := range header {
			row[i] = formatCell(flat[key])
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrap(err, "failed to write CSV row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "failed to flush CSV")
	}
	return buf.String(), nil
}

// formatCell renders a flattened value for a CSV cell. JSON numbers arrive
// as float64; integral values must not pick up an exponent or a trailing
// fraction.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func (r *Runner) exportCSV(ctx context.Context, params *OperationParams) OperationResult {
	if params == nil {
		return Failure("No results or search parameters provided for export")
	}

	// Results given directly take precedence over an embedded search.
	if params.Results != nil {
		csvData, err := FormatCSV(params.Results)
		if err != nil {
			return Failure(err.Error())
		}
		return OperationResult{Success: true, CSVData: csvData}
	}

	if params.Search != nil {
		req := *params.Search
		// Exports grab one large page instead of paginating; anything beyond
		// the batch limit is truncated.
		req.Limit = ExportBatchLimit

		searched := r.runSearch(ctx, &req)
		if !searched.Success {
			if searched.Error == "" {
				return Failure("Failed to retrieve results for export")
			}
			return Failure(searched.Error)
		}

		records := searched.Data.Records
		if len(records) == 0 {
			records = ExtractRecords(searched.Data.Raw)
		}

		csvData, err := FormatCSV(records)
		if err != nil {
			return Failure(err.Error())
		}
		return OperationResult{Success: true, CSVData: csvData}
	}

	return Failure("No results or search parameters provided for export")
}
