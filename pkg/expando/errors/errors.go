// Package errors provides structured error types for the expando
// format-string engine.
//
// This package defines ExpandoError, a unified error type that
// carries an error class, a catalog code and the byte offset of the
// offending character in the source format string.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse    ErrorClass = "parse"    // Format-string syntax errors
	ClassFormat   ErrorClass = "format"   // Invalid width/number specs
	ClassContract ErrorClass = "contract" // Definition/provider table mismatches
)

// ExpandoError represents any error from parsing a format string or
// validating its provider tables.
type ExpandoError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "PARSE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Offset  int            `json:"offset"`          // 0-based byte offset into the source (-1 if unknown)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *ExpandoError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *ExpandoError) String() string {
	var sb strings.Builder

	if e.Offset >= 0 {
		sb.WriteString(fmt.Sprintf("offset %d: ", e.Offset))
	}
	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *ExpandoError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse, ClassFormat:
		sb.WriteString("Format string error")
	default:
		sb.WriteString("Table error")
	}

	if e.Offset >= 0 {
		sb.WriteString(fmt.Sprintf(": at offset %d\n  ", e.Offset))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *ExpandoError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithOffset returns a copy of the error with the byte offset set.
func (e *ExpandoError) WithOffset(offset int) *ExpandoError {
	copy := *e
	copy.Offset = offset
	return &copy
}

// IsParseError returns true if this is a format-string syntax error.
func (e *ExpandoError) IsParseError() bool {
	return e.Class == ClassParse || e.Class == ClassFormat
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "unknown token '{{.Token}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "invalid number: {{.Literal}}",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "invalid time period: '{{.Period}}', must be one of 'ymwdHM'",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "unterminated conditional",
		Hints:    []string{"%<token?true-branch&false-branch>"},
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "missing padding character after '%{{.Marker}}'",
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "conditional has no condition",
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "trailing '%' at end of format string",
	},
	"PARSE-0008": {
		Class:    ClassParse,
		Template: "trailing '\\' at end of format string",
	},
	"PARSE-0009": {
		Class:    ClassParse,
		Template: "token '{{.Token}}' does not take a format spec",
	},

	// ========================================
	// Format-spec errors (FORMAT-0xxx)
	// ========================================
	"FORMAT-0001": {
		Class:    ClassFormat,
		Template: "invalid width: {{.Literal}}",
	},

	// ========================================
	// Table contract errors (CONTRACT-0xxx)
	// ========================================
	"CONTRACT-0001": {
		Class:    ClassContract,
		Template: "no provider registered for token '{{.Token}}' (domain {{.Did}}, uid {{.Uid}})",
	},
	"CONTRACT-0002": {
		Class:    ClassContract,
		Template: "provider for token '{{.Token}}' (domain {{.Did}}, uid {{.Uid}}) has no callbacks",
	},
	"CONTRACT-0003": {
		Class:    ClassContract,
		Template: "token '{{.Token}}' is numeric but its provider has no number callback",
	},
}

// New creates an ExpandoError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *ExpandoError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &ExpandoError{
			Class:   ClassParse,
			Code:    code,
			Message: msg,
			Offset:  -1,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &ExpandoError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Offset:  -1,
		Data:    data,
	}
}

// NewAt creates an ExpandoError with the byte offset set.
func NewAt(code string, offset int, data map[string]any) *ExpandoError {
	err := New(code, data)
	err.Offset = offset
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *ExpandoError {
	return &ExpandoError{
		Class:   class,
		Message: message,
		Offset:  -1,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}
