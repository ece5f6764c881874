// Package formats encodes world graphs for export and decodes the canonical
// format for import.
package formats

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

// Document is the exported subset of the graph. Worlds are in creation
// order with elements ordered by title; activity is newest first.
type Document struct {
	Worlds     []entities.World
	Activity   []entities.ActivityItem
	ExportedAt time.Time
}

// Writer serializes a document into one export format.
type Writer interface {
	Write(w io.Writer, doc *Document) error
}

// ForFormat returns the writer for the given format, or nil.
func ForFormat(format entities.ExportFormat) Writer {
	switch format {
	case entities.FormatCanonical:
		return Canonical{}
	case entities.FormatText:
		return Text{}
	case entities.FormatMarkdown:
		return Markdown{}
	case entities.FormatCSV:
		return CSV{}
	case entities.FormatXML:
		return XML{}
	default:
		return nil
	}
}

// ForFile infers the export format from a file extension.
func ForFile(filename string) (entities.ExportFormat, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range entities.AllExportFormats {
		if f.Extension() == ext {
			return f, true
		}
	}
	if ext == ".markdown" {
		return entities.FormatMarkdown, true
	}
	return "", false
}

// Encode renders doc in the given format.
func Encode(format entities.ExportFormat, doc *Document) ([]byte, error) {
	writer := ForFormat(format)
	if writer == nil {
		return nil, &entities.FormatError{Format: string(format), Reason: "no writer for format"}
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, doc); err != nil {
		return nil, fmt.Errorf("writing %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// elementTitles maps element IDs to titles for relationship rendering.
func elementTitles(w *entities.World) map[string]string {
	titles := make(map[string]string, len(w.Elements))
	for i := range w.Elements {
		titles[w.Elements[i].ID] = w.Elements[i].Title
	}
	return titles
}

// relationshipLines renders every relationship of elementID from its side,
// as "Label: Counterpart", marked "(bidirectional)" when flagged and
// followed by " - Description" when there is one.
func relationshipLines(w *entities.World, titles map[string]string, elementID string) []string {
	var lines []string
	for i := range w.Relationships {
		rel := &w.Relationships[i]
		if !rel.Involves(elementID) {
			continue
		}
		label := rel.Type.Label()
		other := rel.TargetID
		if rel.TargetID == elementID {
			label = rel.Type.Inverse().Label()
			other = rel.SourceID
		}
		line := label + ": " + titles[other]
		if rel.Bidirectional {
			line += " (bidirectional)"
		}
		if desc := strings.Join(strings.Fields(rel.Description), " "); desc != "" {
			line += " - " + desc
		}
		lines = append(lines, line)
	}
	return lines
}
