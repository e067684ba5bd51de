// Package schema defines the canonical incident record produced by the
// ingestion pipeline, the enums it carries, and the column-variant table
// that maps real-world header spellings onto canonical field names.
package schema

import (
	"fmt"
	"regexp"
	"time"
)

// Gender is the canonical victim-gender enum.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// CaseStatus is the canonical case-closed enum.
type CaseStatus string

const (
	CaseClosed CaseStatus = "Yes"
	CaseOpen   CaseStatus = "No"
)

// Canonical field names. These are the keys of the column-variant table and
// the field paths reported in FieldErrors.
const (
	FieldID             = "id"
	FieldReportDate     = "report_date"
	FieldOccurrenceDate = "occurrence_date"
	FieldOccurrenceTime = "occurrence_time"
	FieldLocation       = "location"
	FieldCategory       = "category"
	FieldDescription    = "description"
	FieldVictimAge      = "victim_age"
	FieldVictimGender   = "victim_gender"
	FieldWeapon         = "weapon"
	FieldDomain         = "domain"
	FieldResponder      = "responder_deployed"
	FieldCaseClosed     = "case_closed"
	FieldClosureDate    = "closure_date"
)

// Field defaults applied when a source column is missing or a value cannot
// be parsed. Every coercer is total: it falls back to these instead of
// failing the record.
const (
	DefaultLocation    = "Unknown"
	DefaultCategory    = "UNKNOWN"
	DefaultDescription = "Unknown"
	DefaultWeapon      = "None"
	DefaultDomain      = "Other"
	DefaultTime        = "12:00"
	DefaultAge         = 25
)

// Record is the validated output unit of the pipeline.
type Record struct {
	ID                string
	ReportDate        time.Time
	OccurrenceDate    time.Time
	OccurrenceTime    string // "HH:MM", 00:00-23:59
	Location          string
	Category          string
	Description       string
	VictimAge         int
	VictimGender      Gender
	Weapon            string
	Domain            string
	ResponderDeployed bool
	CaseClosed        CaseStatus
	ClosureDate       *time.Time // only when CaseClosed == CaseClosed and parseable
}

// FieldError reports a single field-level violation for one row.
type FieldError struct {
	Row     int    // 0-indexed input row
	Field   string // canonical field path
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var timeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Validate checks the record against the canonical schema: required fields
// present, time format valid, age in range, enums constrained. It returns
// one FieldError per violated constraint; the Row index is left zero and is
// filled in by the caller.
func (r Record) Validate() []FieldError {
	var errs []FieldError

	if r.ID == "" {
		errs = append(errs, FieldError{Field: FieldID, Message: "identifier must not be empty"})
	}
	if r.ReportDate.IsZero() {
		errs = append(errs, FieldError{Field: FieldReportDate, Message: "report date is missing"})
	}
	if r.OccurrenceDate.IsZero() {
		errs = append(errs, FieldError{Field: FieldOccurrenceDate, Message: "occurrence date is missing"})
	}
	if !timeRe.MatchString(r.OccurrenceTime) {
		errs = append(errs, FieldError{Field: FieldOccurrenceTime, Message: fmt.Sprintf("%q is not a valid HH:MM time", r.OccurrenceTime)})
	}
	if r.VictimAge < 0 || r.VictimAge > 120 {
		errs = append(errs, FieldError{Field: FieldVictimAge, Message: fmt.Sprintf("age %d outside [0,120]", r.VictimAge)})
	}
	switch r.VictimGender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		errs = append(errs, FieldError{Field: FieldVictimGender, Message: fmt.Sprintf("%q is not one of Male, Female, Other", r.VictimGender)})
	}
	switch r.CaseClosed {
	case CaseClosed, CaseOpen:
	default:
		errs = append(errs, FieldError{Field: FieldCaseClosed, Message: fmt.Sprintf("%q is not one of Yes, No", r.CaseClosed)})
	}
	if r.ClosureDate != nil && r.CaseClosed != CaseClosed {
		errs = append(errs, FieldError{Field: FieldClosureDate, Message: "closure date set on an open case"})
	}

	return errs
}
