package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crimedesk/ingest/internal/schema"
)

// coerceNow is swappable for deterministic tests of the date fallback.
var coerceNow = time.Now

// CoerceRow converts one raw row into a canonical record through the field
// coercers, then checks it against the record schema. The returned errors
// are nil on success. Coercion itself is total; errors come from structural
// schema violations and from recovered panics when a raw value has a shape
// no coercer anticipated. A panicking row must never abort the batch.
func CoerceRow(raw RawRow, mapping schema.ColumnMapping, rowIdx int, opts Options) (rec schema.Record, errs []schema.FieldError) {
	defer func() {
		if r := recover(); r != nil {
			errs = []schema.FieldError{{
				Row:     rowIdx,
				Field:   "row",
				Message: fmt.Sprintf("unexpected value shape: %v", r),
			}}
		}
	}()

	get := func(field string) any {
		header, ok := mapping[field]
		if !ok {
			return nil
		}
		return raw[header]
	}

	rec = schema.Record{
		ID:                CoerceString(get(schema.FieldID), "", opts.TrimStrings),
		ReportDate:        CoerceDate(get(schema.FieldReportDate), coerceNow),
		OccurrenceDate:    CoerceDate(get(schema.FieldOccurrenceDate), coerceNow),
		OccurrenceTime:    CoerceTime(get(schema.FieldOccurrenceTime)),
		Location:          CoerceString(get(schema.FieldLocation), schema.DefaultLocation, opts.TrimStrings),
		Category:          CoerceString(get(schema.FieldCategory), schema.DefaultCategory, opts.TrimStrings),
		Description:       CoerceString(get(schema.FieldDescription), schema.DefaultDescription, opts.TrimStrings),
		VictimAge:         CoerceAge(get(schema.FieldVictimAge)),
		VictimGender:      CoerceGender(get(schema.FieldVictimGender)),
		Weapon:            CoerceString(get(schema.FieldWeapon), schema.DefaultWeapon, opts.TrimStrings),
		Domain:            CoerceString(get(schema.FieldDomain), schema.DefaultDomain, opts.TrimStrings),
		ResponderDeployed: CoerceBool(get(schema.FieldResponder)),
		CaseClosed:        CoerceCaseStatus(get(schema.FieldCaseClosed)),
	}

	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.CaseClosed == schema.CaseClosed {
		rec.ClosureDate = CoerceOptionalDate(get(schema.FieldClosureDate))
	}

	violations := rec.Validate()
	for i := range violations {
		violations[i].Row = rowIdx
	}
	if len(violations) > 0 {
		return rec, violations
	}
	return rec, nil
}

// generateID mints an identifier for rows whose source has none.
func generateID() string {
	return "GEN-" + uuid.NewString()
}
