package entities

import (
	"fmt"
	"strings"
)

// ExportFormat names a serialization target.
type ExportFormat string

const (
	// FormatCanonical is the lossless, importable JSON document.
	FormatCanonical ExportFormat = "json"
	FormatText      ExportFormat = "text"
	FormatMarkdown  ExportFormat = "markdown"
	FormatCSV       ExportFormat = "csv"
	FormatXML       ExportFormat = "xml"
)

// AllExportFormats lists every export format.
var AllExportFormats = []ExportFormat{FormatCanonical, FormatText, FormatMarkdown, FormatCSV, FormatXML}

// IsValid reports whether f is a known format.
func (f ExportFormat) IsValid() bool {
	for _, known := range AllExportFormats {
		if f == known {
			return true
		}
	}
	return false
}

// IsOneWay reports whether the format has no import path.
func (f ExportFormat) IsOneWay() bool {
	return f != FormatCanonical
}

// Extension returns the conventional file extension including the dot.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatCanonical:
		return ".json"
	case FormatText:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatXML:
		return ".xml"
	default:
		return ""
	}
}

// ParseExportFormat converts a string to an ExportFormat. "canonical" and
// "md" are accepted as aliases.
func ParseExportFormat(s string) (ExportFormat, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "canonical":
		key = string(FormatCanonical)
	case "md":
		key = string(FormatMarkdown)
	case "txt":
		key = string(FormatText)
	}
	f := ExportFormat(key)
	if !f.IsValid() {
		return "", &FormatError{Format: s, Reason: fmt.Sprintf("unknown format (valid: %s)", formatNames())}
	}
	return f, nil
}

func formatNames() string {
	names := make([]string, len(AllExportFormats))
	for i, f := range AllExportFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
