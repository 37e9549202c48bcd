package inmemory

import (
	"fmt"
	"strings"

	"github.com/letmevibethatforyou/patentsearch"
)

// matchesRequest evaluates the type-specific part of a search request
// against a record.
func matchesRequest(rec record, req *patentsearch.SearchRequest) bool {
	switch req.Type {
	case patentsearch.SearchSimple:
		return matchesTerm(rec, req.Query.Term)
	case patentsearch.SearchBoolean:
		return matchesBoolean(rec, req.Query.Terms)
	case patentsearch.SearchWildcard:
		field := req.Query.Field
		if field == "" {
			field = patentsearch.DefaultTitleField
		}
		return matchesWildcard(rec, field, req.Query.Value)
	case patentsearch.SearchFieldSpecific:
		if req.Query.Field == "" || req.Query.Value == "" {
			return true
		}
		return matchesField(rec, req.Query.Field, req.Query.Value)
	case patentsearch.SearchRange:
		field := req.Query.Field
		if field == "" {
			field = patentsearch.FilingDateField
		}
		return matchesRange(rec, field, req.Query.ValueFrom, req.Query.ValueTo)
	case patentsearch.SearchFiltered:
		if !matchesTerm(rec, req.Query.Term) {
			return false
		}
		if req.Query.Field != "" && req.Query.Value != "" {
			return matchesField(rec, req.Query.Field, req.Query.Value)
		}
		return true
	case patentsearch.SearchFaceted:
		return matchesTerm(rec, req.Query.Term)
	default:
		return false
	}
}

// matchesTerm checks whether any field of the record contains the term.
// An empty term matches every record.
func matchesTerm(rec record, term string) bool {
	if term == "" || term == "*" {
		return true
	}
	term = strings.ToLower(term)
	for _, value := range rec.flat {
		if strings.Contains(strings.ToLower(fmt.Sprintf("%v", value)), term) {
			return true
		}
	}
	return false
}

// matchesBoolean folds the boolean terms left to right. A NOT operator
// replaces the join entirely, excluding records that match its term.
func matchesBoolean(rec record, terms []patentsearch.BooleanTerm) bool {
	matched := false
	started := false
	for _, t := range terms {
		if t.Field == "" || t.Value == "" {
			continue
		}
		m := matchesField(rec, t.Field, t.Value)
		if !started {
			matched = m
			started = true
			continue
		}
		switch strings.ToUpper(t.Operator) {
		case "OR":
			matched = matched || m
		case "NOT":
			matched = matched && !m
		default:
			matched = matched && m
		}
	}
	if !started {
		// No valid terms behaves like a match-all query.
		return true
	}
	return matched
}

// matchesField checks whether the record's field contains the value,
// case-insensitively. Array and nested fields match on any element.
func matchesField(rec record, field, value string) bool {
	value = strings.ToLower(value)
	for _, v := range fieldValues(rec, field) {
		if strings.Contains(strings.ToLower(v), value) {
			return true
		}
	}
	return false
}

// matchesWildcard checks the field against a pattern where * matches
// any run of characters.
func matchesWildcard(rec record, field, pattern string) bool {
	for _, v := range fieldValues(rec, field) {
		if wildcardMatch(strings.ToLower(v), strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// matchesRange checks the field against an inclusive range. Values
// compare as strings, which is correct for ISO-8601 dates.
func matchesRange(rec record, field, from, to string) bool {
	for _, v := range fieldValues(rec, field) {
		if from != "" && v < from {
			continue
		}
		if to != "" && v > to {
			continue
		}
		return true
	}
	return false
}

// fieldValues returns the string values stored under a field path.
// Flattened array elements (field.0, field.1, ...) and nested objects
// under the path are all included.
func fieldValues(rec record, field string) []string {
	var values []string
	prefix := field + "."
	for key, value := range rec.flat {
		if key == field || strings.HasPrefix(key, prefix) {
			values = append(values, fmt.Sprintf("%v", value))
		}
	}
	return values
}

// wildcardMatch reports whether s matches a glob-style pattern where *
// matches any substring.
func wildcardMatch(s, pattern string) bool {
	if pattern == "" {
		return s == ""
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return s == pattern
	}
	if parts[0] != "" && !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	last := parts[len(parts)-1]
	return last == "" || strings.HasSuffix(s, last)
}
