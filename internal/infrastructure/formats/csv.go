package formats

import (
	"encoding/csv"
	"io"
	"strings"
)

// CSVHeader lists the CSV columns, one row per element.
var CSVHeader = []string{"world", "type", "title", "content", "tags", "created", "modified", "relationships"}

// CSV writes one row per element.
type CSV struct{}

// Write renders doc as CSV with a header row.
func (CSV) Write(w io.Writer, doc *Document) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}

	for i := range doc.Worlds {
		world := &doc.Worlds[i]
		titles := elementTitles(world)
		for j := range world.Elements {
			e := &world.Elements[j]
			row := []string{
				world.Title,
				string(e.Type),
				e.Title,
				e.Content,
				strings.Join(e.Tags, "; "),
				e.CreatedAt.UTC().Format(TimeLayout),
				e.ModifiedAt.UTC().Format(TimeLayout),
				strings.Join(relationshipLines(world, titles, e.ID), "; "),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
