package ingest

import (
	"fmt"
	"strings"
)

// Severity grades a diagnostic
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Category classifies what went wrong
type Category string

const (
	CategoryEncoding      Category = "ENCODING"
	CategoryMissingFields Category = "MISSING_FIELDS"
	CategoryFileFormat    Category = "FILE_FORMAT"
	CategoryValidation    Category = "DATA_VALIDATION"
	CategoryDuplicate     Category = "DUPLICATE"
	CategoryUnknown       Category = "UNKNOWN"
)

// maxReportedRowErrors is how many line-numbered errors a validation
// diagnostic quotes verbatim.
const maxReportedRowErrors = 5

// Diagnostic is a structured, user-facing description of a pipeline failure
// or notable outcome. Every CRITICAL diagnostic carries at least one
// concrete remediation suggestion. Debug holds internal detail and is
// stripped from responses outside debug mode.
type Diagnostic struct {
	Severity    Severity       `json:"severity"`
	Category    Category       `json:"category"`
	Message     string         `json:"message"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Debug       map[string]any `json:"debug,omitempty"`
}

// IsCritical reports whether this diagnostic halts the pipeline
func (d Diagnostic) IsCritical() bool {
	return d.Severity == SeverityCritical
}

// Redacted returns a copy with the debug payload removed
func (d Diagnostic) Redacted() Diagnostic {
	d.Debug = nil
	return d
}

// NewEncodingDiagnostic reports an undecodable file, naming the (wrong)
// encoding the detector settled on.
func NewEncodingDiagnostic(det DetectionResult) Diagnostic {
	msg := fmt.Sprintf(
		"The file's text encoding could not be determined reliably (best guess: %s, confidence %.0f%%).",
		det.Encoding, det.Confidence*100)
	if det.Garbled {
		msg = fmt.Sprintf(
			"The file decoded as %s but the result contains garbled text.", det.Encoding)
	}
	return Diagnostic{
		Severity: SeverityCritical,
		Category: CategoryEncoding,
		Message:  msg,
		Suggestions: []string{
			"Re-save the file as UTF-8 (in Excel: File > Save As > CSV UTF-8) and upload it again.",
			"Export the file again from the mall's admin console without editing it.",
		},
		Debug: map[string]any{
			"detected_encoding": det.Encoding,
			"confidence":        det.Confidence,
			"garbled":           det.Garbled,
			"likely_japanese":   det.LikelyJapanese,
		},
	}
}

// NewMissingFieldsDiagnostic reports required columns that could not be
// found. schema is the classified (or best-guess) schema and supplies the
// accepted header spellings so the user can rename columns.
func NewMissingFieldsDiagnostic(schema *Schema, missing []Field) Diagnostic {
	names := make([]string, len(missing))
	suggestions := make([]string, 0, len(missing)+1)
	for i, f := range missing {
		names[i] = string(f)
		if schema != nil {
			if candidates := schema.headerCandidates(f); len(candidates) > 0 {
				suggestions = append(suggestions, fmt.Sprintf(
					"Add a %q column; accepted header names: %s.",
					f, strings.Join(candidates, ", ")))
			}
		}
	}
	if schema == nil {
		suggestions = append(suggestions,
			"Export the order CSV from the mall's admin console with the default column set.")
	}
	return Diagnostic{
		Severity: SeverityCritical,
		Category: CategoryMissingFields,
		Message: fmt.Sprintf("Required columns are missing: %s.",
			strings.Join(names, ", ")),
		Suggestions: suggestions,
	}
}

// NewUnknownSourceDiagnostic reports a header row that matched no known
// mall schema.
func NewUnknownSourceDiagnostic(registry *SchemaRegistry, headers []string) Diagnostic {
	sources := make([]string, 0, 2)
	for _, s := range registry.Sources() {
		sources = append(sources, s.String())
	}
	return Diagnostic{
		Severity: SeverityCritical,
		Category: CategoryMissingFields,
		Message:  "The file's columns do not match any supported mall export format.",
		Suggestions: []string{
			fmt.Sprintf("Supported formats: %s. Export the order CSV from one of these platforms.",
				strings.Join(sources, ", ")),
			"If this is a supported export, select the platform explicitly when uploading.",
		},
		Debug: map[string]any{"headers": headers},
	}
}

// NewFileFormatDiagnostic reports a file-level check failure found before
// parsing (extension, size, emptiness).
func NewFileFormatDiagnostic(message string, suggestions ...string) Diagnostic {
	return Diagnostic{
		Severity:    SeverityCritical,
		Category:    CategoryFileFormat,
		Message:     message,
		Suggestions: suggestions,
	}
}

// NewValidationDiagnostic summarizes row validation failures. Under the
// partial-commit policy this is a WARNING: valid rows were persisted and
// only the listed rows need correcting.
func NewValidationDiagnostic(totalRows, invalidRows int, ec *ErrorCollection) Diagnostic {
	quoted := make([]string, 0, maxReportedRowErrors)
	for _, e := range ec.First(maxReportedRowErrors) {
		quoted = append(quoted, e.Error())
	}
	msg := fmt.Sprintf("%d of %d rows failed validation (%d valid). First errors: %s",
		invalidRows, totalRows, totalRows-invalidRows, strings.Join(quoted, "; "))
	return Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryValidation,
		Message:  msg,
		Suggestions: []string{
			"Correct the listed rows in the original file and upload only the corrected rows.",
		},
	}
}

// NewDuplicateDiagnostic reports a row skipped because the order code is
// already registered for this owner. Not an error; the snapshot diff lets
// the user review whether the existing record is current.
func NewDuplicateDiagnostic(line int, orderCode string, existing, incoming map[string]any) Diagnostic {
	return Diagnostic{
		Severity: SeverityInfo,
		Category: CategoryDuplicate,
		Message: fmt.Sprintf("Line %d: order %q is already registered and was skipped.",
			line, orderCode),
		Suggestions: []string{
			"If the existing record is outdated, delete it and upload this row again.",
		},
		Debug: map[string]any{
			"existing": existing,
			"incoming": incoming,
		},
	}
}

// NewUnknownDiagnostic wraps an unexpected internal failure. The raw error
// text lives only in the debug payload; the user-facing message carries the
// request ID for support triage.
func NewUnknownDiagnostic(requestID string, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityCritical,
		Category: CategoryUnknown,
		Message: fmt.Sprintf(
			"An unexpected error interrupted the import. Quote request ID %s when contacting support.",
			requestID),
		Suggestions: []string{
			"Try the upload again; if it keeps failing, contact support with the request ID.",
		},
		Debug: map[string]any{
			"request_id": requestID,
			"error":      err.Error(),
		},
	}
}
