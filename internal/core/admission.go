package core

import (
	"fmt"
	"strings"
)

// AdmissionResult is the outcome of the pre-flight checks for one file.
type AdmissionResult struct {
	FileName string
	Valid    bool
	Reasons  []string // one entry per violated rule
}

// Err returns an *AdmissionError carrying all reasons, or nil when the file
// passed.
func (r AdmissionResult) Err() error {
	if r.Valid {
		return nil
	}
	return &AdmissionError{FileName: r.FileName, Reasons: r.Reasons}
}

// CheckAdmission runs the pre-flight checks gating entry to the pipeline.
// Every rule is checked independently so multiple reasons can surface
// together: size against the configured ceiling, the .csv extension, and
// the declared media type against the allow-list. The extension check is
// authoritative; the media type is advisory and a file with a correct
// extension passes regardless of its declared type. Fails closed: any
// violated rule marks the file invalid. No side effects.
func CheckAdmission(meta FileMeta, opts Options) AdmissionResult {
	result := AdmissionResult{FileName: meta.Name, Valid: true}

	if meta.Size > opts.MaxFileSize {
		result.Valid = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("file size %d bytes exceeds maximum of %d bytes", meta.Size, opts.MaxFileSize))
	}

	hasExt := strings.HasSuffix(strings.ToLower(meta.Name), ".csv")
	if !hasExt {
		result.Valid = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("file %q must have a .csv extension", meta.Name))
	}

	if !hasExt && meta.MediaType != "" && !typeAllowed(meta.MediaType, opts.AcceptedTypes) {
		result.Valid = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("unsupported media type %q", meta.MediaType))
	}

	return result
}

func typeAllowed(mediaType string, accepted []string) bool {
	// Strip parameters such as "; charset=utf-8".
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	for _, t := range accepted {
		if mediaType == strings.ToLower(t) {
			return true
		}
	}
	return false
}
