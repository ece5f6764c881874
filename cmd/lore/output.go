package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

const timeLayout = "2006-01-02 15:04"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func writeWorlds(w io.Writer, worlds []handlers.WorldSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tELEMENTS\tRELATIONSHIPS\tDESCRIPTION")
	for _, s := range worlds {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			s.ID, s.Title, s.Elements, s.Relationships, truncate(s.Description, TruncateWidth))
	}
	return tw.Flush()
}

func writeElements(w io.Writer, elements []entities.Element) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tTAGS")
	for i := range elements {
		e := &elements[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Type, e.Title, strings.Join(e.Tags, ", "))
	}
	return tw.Flush()
}

func writeElementDetail(w io.Writer, d *handlers.ElementDetail) error {
	e := &d.Element
	fmt.Fprintf(w, "%s (%s)\n", e.Title, e.Type.DisplayName())
	fmt.Fprintf(w, "  id:       %s\n", e.ID)
	fmt.Fprintf(w, "  world:    %s\n", d.World.Title)
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "  tags:     %s\n", strings.Join(e.Tags, ", "))
	}
	fmt.Fprintf(w, "  modified: %s\n", e.ModifiedAt.Local().Format(timeLayout))

	if e.Content != "" {
		fmt.Fprintf(w, "\n%s\n", e.Content)
	}

	if len(d.Relationships) > 0 {
		fmt.Fprintln(w, "\nRelationships:")
		for _, v := range d.Relationships {
			fmt.Fprintf(w, "  %s %s\n", v.Label, v.CounterpartTitle)
		}
	}

	if len(d.Backlinks) > 0 {
		fmt.Fprintln(w, "\nMentioned by:")
		if err := writeBacklinks(w, d.Backlinks); err != nil {
			return err
		}
	}
	return nil
}

func writeBacklinks(w io.Writer, links []services.Backlink) error {
	for _, l := range links {
		fmt.Fprintf(w, "  %s (at %d)\n", l.SourceTitle, l.Mention.Offset)
	}
	return nil
}

// writeRelationsTree prints the listing under its root: the element when
// the listing is viewed from one, the world otherwise.
func writeRelationsTree(w io.Writer, listing *handlers.RelationshipListing) error {
	root := listing.World.Title
	if listing.Element != nil {
		root = listing.Element.Title
	}
	fmt.Fprintln(w, root)

	for i, v := range listing.Views {
		prefix := "+-"
		if i == len(listing.Views)-1 {
			prefix = "\\-"
		}

		dirIndicator := ""
		if v.Relationship.Bidirectional {
			dirIndicator = " <->"
		}

		if listing.Element != nil {
			fmt.Fprintf(w, "%s %s%s -> %s\n", prefix, v.Label, dirIndicator, v.CounterpartTitle)
			continue
		}
		source := sourceTitle(listing, &v)
		fmt.Fprintf(w, "%s %s %s%s -> %s\n", prefix, source, v.Label, dirIndicator, v.CounterpartTitle)
	}
	return nil
}

func writeRelationsList(w io.Writer, listing *handlers.RelationshipListing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFROM\tRELATION\tTO")
	for i := range listing.Views {
		v := &listing.Views[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Relationship.ID, sourceTitle(listing, v), v.Label, v.CounterpartTitle)
	}
	return tw.Flush()
}

// sourceTitle is the title on the near side of a view.
func sourceTitle(listing *handlers.RelationshipListing, v *services.RelationshipView) string {
	if listing.Element != nil {
		return listing.Element.Title
	}
	if e := listing.World.Element(v.Relationship.SourceID); e != nil {
		return e.Title
	}
	return v.Relationship.SourceID
}

func writeActivity(w io.Writer, items []entities.ActivityItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tWORLD\tSUBJECT\tDETAIL")
	for i := range items {
		it := &items[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.Timestamp.Local().Format(timeLayout),
			it.Kind,
			it.WorldTitle,
			it.ElementTitle,
			truncate(it.Detail, TruncateWidth))
	}
	return tw.Flush()
}

func writeSearchHits(w io.Writer, hits []ports.SearchHit) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tTYPE\tTITLE\tID")
	for _, h := range hits {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\n", h.Score, h.Type, h.Title, h.ElementID)
	}
	return tw.Flush()
}

func writeTypes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ELEMENT TYPE\tNAME")
	for _, t := range entities.AllElementTypes {
		fmt.Fprintf(tw, "%s\t%s\n", t, t.DisplayName())
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "RELATION TYPE\tLABEL\tINVERSE")
	for _, t := range entities.AllRelationTypes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t, t.Label(), t.Inverse().Label())
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
