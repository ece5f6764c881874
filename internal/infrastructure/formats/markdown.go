package formats

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Markdown writes one document with a heading per world and element.
type Markdown struct{}

// Write renders doc as markdown.
func (Markdown) Write(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Lore Export\n\nExported: %s\n", doc.ExportedAt.UTC().Format(TimeLayout))

	for i := range doc.Worlds {
		world := &doc.Worlds[i]
		titles := elementTitles(world)

		fmt.Fprintf(bw, "\n## %s\n\n", escapeInline(world.Title))
		if world.Description != "" {
			fmt.Fprintf(bw, "%s\n\n", escapeBlock(world.Description))
		}

		if len(world.Elements) > 0 {
			fmt.Fprint(bw, "| Type | Title | Tags |\n")
			fmt.Fprint(bw, "|------|-------|------|\n")
			for j := range world.Elements {
				e := &world.Elements[j]
				fmt.Fprintf(bw, "| %s | %s | %s |\n",
					e.Type.DisplayName(),
					escapeMarkdown(e.Title),
					escapeMarkdown(strings.Join(e.Tags, ", ")),
				)
			}
		}

		for j := range world.Elements {
			e := &world.Elements[j]
			fmt.Fprintf(bw, "\n### %s\n\n*%s*\n", escapeInline(e.Title), e.Type.DisplayName())
			if e.Content != "" {
				fmt.Fprintf(bw, "\n%s\n", escapeBlock(e.Content))
			}
			if rels := relationshipLines(world, titles, e.ID); len(rels) > 0 {
				fmt.Fprint(bw, "\n")
				for _, rel := range rels {
					fmt.Fprintf(bw, "- %s\n", escapeInline(rel))
				}
			}
		}
	}

	return bw.Flush()
}

// escapeMarkdown makes s safe inside a table cell.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
	"\n", " ",
)

// escapeInline makes s safe inside a heading or list item.
func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

// escapeBlock keeps prose as written but stops lines from turning into
// headings, lists or quotes.
func escapeBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		switch trimmed[0] {
		case '#', '>', '-', '+', '*', '=':
			lines[i] = `\` + trimmed
		}
	}
	return strings.Join(lines, "\n")
}
