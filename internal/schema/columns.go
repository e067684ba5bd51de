package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldVariants lists the accepted real-world header spellings for one
// canonical field. Order matters twice: the table order is the tie-break
// when several headers could claim the same field, and within a field the
// first observed header matching any variant wins.
type FieldVariants struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// ColumnMapping maps canonical field names to the header actually observed
// in one file. Built once per file and reused for every row; absent entries
// mean the canonical field always takes its default.
type ColumnMapping map[string]string

// DefaultVariants is the built-in column-variant table. It is part of the
// contract surface: adding a spelling here is what makes a new file layout
// ingestible without code changes elsewhere.
var DefaultVariants = []FieldVariants{
	{FieldID, []string{"report number", "report no", "report id", "incident id", "dr_no", "dr no", "case number", "id"}},
	{FieldReportDate, []string{"date reported", "report date", "date rptd", "reported on", "reported date"}},
	{FieldOccurrenceDate, []string{"date of occurrence", "occurrence date", "date occ", "incident date", "occurred on", "date"}},
	{FieldOccurrenceTime, []string{"time of occurrence", "occurrence time", "time occ", "incident time", "time"}},
	{FieldLocation, []string{"city", "area", "area name", "location", "neighborhood", "district", "place"}},
	{FieldCategory, []string{"crime code", "crm cd", "category", "offense code", "crime category", "code"}},
	{FieldDescription, []string{"crime description", "crm cd desc", "offense", "offense description", "description", "desc"}},
	{FieldVictimAge, []string{"victim age", "vict age", "age"}},
	{FieldVictimGender, []string{"victim gender", "vict sex", "victim sex", "gender", "sex"}},
	{FieldWeapon, []string{"weapon used", "weapon desc", "weapon description", "weapon"}},
	{FieldDomain, []string{"crime domain", "domain", "classification", "crime type"}},
	{FieldResponder, []string{"police deployed", "responder deployed", "unit deployed", "units deployed", "deployed"}},
	{FieldCaseClosed, []string{"case closed", "case status", "status", "status desc", "solved", "cleared"}},
	{FieldClosureDate, []string{"date case closed", "closure date", "closed on", "clearance date", "date closed"}},
}

// RequiredFields is the minimum canonical subset a file is expected to
// carry. Missing entries raise a header-level error; whether that blocks
// the run is the caller's strictness choice.
var RequiredFields = []string{
	FieldID,
	FieldOccurrenceDate,
	FieldLocation,
	FieldDescription,
	FieldVictimAge,
	FieldVictimGender,
}

// NormalizeHeader lowercases and trims an observed header for variant
// matching.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// VariantsFromYAML parses a column-variant table from YAML, replacing the
// built-in table. The expected shape is a list of {canonical, variants}
// entries. Every canonical name must be one of the known fields.
func VariantsFromYAML(data []byte) ([]FieldVariants, error) {
	var table []FieldVariants
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse column variants: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("parse column variants: empty table")
	}

	known := make(map[string]bool, len(DefaultVariants))
	for _, fv := range DefaultVariants {
		known[fv.Canonical] = true
	}
	for _, fv := range table {
		if !known[fv.Canonical] {
			return nil, fmt.Errorf("parse column variants: unknown canonical field %q", fv.Canonical)
		}
		if len(fv.Variants) == 0 {
			return nil, fmt.Errorf("parse column variants: field %q has no variants", fv.Canonical)
		}
	}
	return table, nil
}
