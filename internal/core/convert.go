package core

// convert.go provides total coercion functions for raw incident data.
//
// These functions handle the messy reality of user-provided files:
//   - Multiple date formats (ISO, EU, US, spreadsheet serial numbers)
//   - Times as day fractions, 12-hour clocks, or embedded in longer strings
//   - Free-text booleans (yes/no, deployed, solved, 1/0)
//   - Excel formula prefixes (="value") and stray quotes
//
// Every coercer is total: unparseable input degrades to a documented
// default and never fails the record. Where a value is genuinely ambiguous
// the attempt order below is the contract: first successful parse wins.

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/crimedesk/ingest/internal/schema"
)

// serialEpoch anchors spreadsheet serial dates: day 0 = 1899-12-31. This
// keeps the historical non-existent-leap-day offset baked into files
// exported from spreadsheets, so serial 1 is 1900-01-01.
var serialEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// Date layouts tried after the strict-ISO and free-form steps, in order.
// Day-first layouts come before month-first: "15/01/2024" must parse as
// January 15th, and for values where both readings are plausible the
// free-form step has already taken the month-first interpretation.
var explicitDateLayouts = []string{
	"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006",
	"2/1/2006 15:04", "02/01/2006 15:04:05",
	"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
	"1/2/2006 15:04", "01/02/2006 15:04:05",
	"2006-1-2", "2006/1/2",
	"2006-01-02 15:04", "2006-01-02 15:04:05",
}

// Time layouts tried in order after token extraction: 24-hour first, then
// 12-hour with meridiem, colon or dotted separators, optional seconds.
var explicitTimeLayouts = []string{
	"15:04", "15:04:05", "15.04", "15.04.05",
	"3:04 PM", "3:04PM", "3:04:05 PM", "3.04 PM",
}

// embeddedTimeRe pulls an H:MM[:SS][ AM/PM] token out of a longer string,
// e.g. "01/15/2024 9:30 PM" or "around 14:05 local".
var embeddedTimeRe = regexp.MustCompile(`\b(\d{1,2}):([0-5]\d)(?::([0-5]\d))?(?:\s*([AaPp][Mm]))?\b`)

// nullLiterals are source strings treated as "no value" for optional fields.
var nullLiterals = map[string]bool{
	"":          true,
	"null":      true,
	"undefined": true,
	"n/a":       true,
	"na":        true,
}

// CleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace, the Excel formula prefix (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// CoerceDate converts a raw value to a calendar timestamp.
//
// Structured timestamps pass through. Numbers are read as spreadsheet
// serial day counts from serialEpoch. Strings attempt, in order: strict ISO
// (2006-01-02), the free-form parser, then the explicit layout list.
// Anything else defaults to now at coercion time.
func CoerceDate(v any, now func() time.Time) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case float64:
		return serialDate(val)
	case int:
		return serialDate(float64(val))
	case int64:
		return serialDate(float64(val))
	case string:
		if t, ok := parseDateString(val); ok {
			return t
		}
		slog.Debug("date value unparseable, defaulting to now", "value", val)
	}
	return now()
}

// CoerceOptionalDate is CoerceDate with an "absent" escape hatch: empty
// values and null literals return nil, and an unparseable string degrades
// to absent rather than now.
func CoerceOptionalDate(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return &val
	case float64:
		t := serialDate(val)
		return &t
	case int:
		t := serialDate(float64(val))
		return &t
	case int64:
		t := serialDate(float64(val))
		return &t
	case string:
		if nullLiterals[strings.ToLower(strings.TrimSpace(val))] {
			return nil
		}
		if t, ok := parseDateString(val); ok {
			return &t
		}
	}
	return nil
}

func serialDate(days float64) time.Time {
	whole := int(days)
	frac := days - float64(whole)
	t := serialEpoch.AddDate(0, 0, whole)
	if frac > 0 {
		t = t.Add(time.Duration(frac * 24 * float64(time.Hour)))
	}
	return t
}

func parseDateString(s string) (time.Time, bool) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return t, true
	}
	for _, layout := range explicitDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceTime converts a raw value to a canonical "HH:MM" string.
//
// A number in [0,1) is a fraction of a day: minutes = floor(v*1440). A
// string first has an embedded H:MM[:SS][AM/PM] token extracted, then the
// explicit layout list is tried; meridiem arithmetic applies (PM adds 12
// unless already 12, AM turns 12 into 0). Minutes or seconds >= 60 and
// hours >= 24 reject the pattern. Everything else defaults to "12:00".
func CoerceTime(v any) string {
	switch val := v.(type) {
	case float64:
		if val >= 0 && val < 1 {
			return fractionToClock(val)
		}
	case string:
		s := CleanCell(val)
		if s == "" {
			return schema.DefaultTime
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f < 1 {
			return fractionToClock(f)
		}
		if hhmm, ok := extractClock(s); ok {
			return hhmm
		}
		for _, layout := range explicitTimeLayouts {
			if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
				return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
			}
		}
		slog.Debug("time value unparseable, defaulting", "value", val)
	}
	return schema.DefaultTime
}

func fractionToClock(v float64) string {
	minutes := int(math.Floor(v * 1440))
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// extractClock finds an embedded time token and applies meridiem arithmetic.
func extractClock(s string) (string, bool) {
	m := embeddedTimeRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	meridiem := strings.ToUpper(m[4])

	if meridiem != "" {
		if hour > 12 {
			return "", false
		}
		if meridiem == "PM" && hour != 12 {
			hour += 12
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		}
	}
	if hour >= 24 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// CoerceAge converts a raw value to an integer age clamped to [0,120].
// Numbers are rounded to the nearest integer; numeric strings parse the
// same way; anything else defaults to 25.
func CoerceAge(v any) int {
	switch val := v.(type) {
	case float64:
		return clampAge(int(math.Round(val)))
	case int:
		return clampAge(val)
	case int64:
		return clampAge(int(val))
	case string:
		if f, err := strconv.ParseFloat(CleanCell(val), 64); err == nil {
			return clampAge(int(math.Round(f)))
		}
	}
	return schema.DefaultAge
}

func clampAge(age int) int {
	if age < 0 {
		return 0
	}
	if age > 120 {
		return 120
	}
	return age
}

// CoerceGender maps free-text gender values onto the canonical enum.
// "female" anywhere in the value wins over "male" since the latter is a
// substring of the former. Idempotent on its own output.
func CoerceGender(v any) schema.Gender {
	s, ok := v.(string)
	if !ok {
		return schema.GenderOther
	}
	s = strings.ToLower(CleanCell(s))

	switch {
	case strings.Contains(s, "female"), s == "f":
		return schema.GenderFemale
	case strings.Contains(s, "male"), s == "m":
		return schema.GenderMale
	default:
		return schema.GenderOther
	}
}

// caseAffirmatives is the vocabulary that marks a case as closed.
var caseAffirmatives = map[string]bool{
	"yes": true, "true": true, "1": true, "closed": true, "solved": true,
}

// CoerceCaseStatus converts a raw value to the case-closed enum. Absent or
// unrecognized values are No.
func CoerceCaseStatus(v any) schema.CaseStatus {
	switch val := v.(type) {
	case bool:
		if val {
			return schema.CaseClosed
		}
	case float64:
		if val > 0 {
			return schema.CaseClosed
		}
	case int:
		if val > 0 {
			return schema.CaseClosed
		}
	case string:
		if caseAffirmatives[strings.ToLower(CleanCell(val))] {
			return schema.CaseClosed
		}
	}
	return schema.CaseOpen
}

// boolAffirmatives is the generic affirmative vocabulary.
var boolAffirmatives = map[string]bool{
	"yes": true, "true": true, "1": true, "deployed": true,
}

// CoerceBool converts a raw value to a boolean: passthrough for booleans,
// the affirmative vocabulary for strings, positive for numbers, false for
// everything else.
func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val > 0
	case int:
		return val > 0
	case string:
		return boolAffirmatives[strings.ToLower(CleanCell(val))]
	}
	return false
}

// CoerceString converts a raw value to a string, substituting def for
// nil/empty input. Non-string scalars are formatted. Trimming is applied
// when trim is set.
func CoerceString(v any, def string, trim bool) string {
	var s string
	switch val := v.(type) {
	case nil:
		return def
	case string:
		s = val
	default:
		s = fmt.Sprintf("%v", val)
	}

	if trim {
		s = CleanCell(s)
	}
	if nullLiterals[strings.ToLower(strings.TrimSpace(s))] {
		return def
	}
	return s
}
