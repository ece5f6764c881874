package formats

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Text writes a plain, human-readable listing.
type Text struct{}

// Write renders doc as indented plain text.
func (Text) Write(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Lore export (%d worlds)\n", len(doc.Worlds))
	fmt.Fprintf(bw, "Exported: %s\n", doc.ExportedAt.UTC().Format(TimeLayout))

	for i := range doc.Worlds {
		world := &doc.Worlds[i]
		titles := elementTitles(world)

		fmt.Fprintf(bw, "\n%s\n%s\n", world.Title, strings.Repeat("=", len([]rune(world.Title))))
		if world.Description != "" {
			fmt.Fprintf(bw, "%s\n", world.Description)
		}
		fmt.Fprintf(bw, "Elements: %d  Relationships: %d\n", len(world.Elements), len(world.Relationships))

		for j := range world.Elements {
			e := &world.Elements[j]
			fmt.Fprintf(bw, "\n  [%s] %s\n", e.Type.DisplayName(), e.Title)
			if len(e.Tags) > 0 {
				fmt.Fprintf(bw, "    Tags: %s\n", strings.Join(e.Tags, ", "))
			}
			if e.Content != "" {
				for _, line := range strings.Split(e.Content, "\n") {
					fmt.Fprintf(bw, "    %s\n", line)
				}
			}
			for _, rel := range relationshipLines(world, titles, e.ID) {
				fmt.Fprintf(bw, "    -> %s\n", rel)
			}
		}
	}

	return bw.Flush()
}
