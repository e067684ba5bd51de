package core

import (
	"github.com/crimedesk/ingest/internal/schema"
)

// BuildColumnMapping reconciles the observed headers of one file against the
// column-variant table. For each canonical field the variants are tried in
// table order and the first observed header matching any of them (case
// insensitive, whitespace trimmed) is recorded. Canonical fields with no
// match are simply absent from the mapping. The mapping is built once per
// file and never mutated mid-stream.
func BuildColumnMapping(headers []string, variants []schema.FieldVariants) schema.ColumnMapping {
	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		key := schema.NormalizeHeader(CleanCell(h))
		// First occurrence wins when a file repeats a header.
		if _, seen := normalized[key]; !seen {
			normalized[key] = h
		}
	}

	mapping := make(schema.ColumnMapping, len(variants))
	for _, fv := range variants {
		for _, variant := range fv.Variants {
			if observed, ok := normalized[schema.NormalizeHeader(variant)]; ok {
				mapping[fv.Canonical] = observed
				break
			}
		}
	}
	return mapping
}

// CheckRequiredColumns reports the required canonical fields that found no
// matching header. A nil return means the file carries the full required
// subset. Whether a non-nil result blocks processing is the caller's
// strictness choice; under the default lenient configuration the row-level
// defaults absorb the gap.
func CheckRequiredColumns(mapping schema.ColumnMapping) *HeaderError {
	var missing []string
	for _, field := range schema.RequiredFields {
		if _, ok := mapping[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &HeaderError{Missing: missing}
}
