package formats

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

type xmlDocument struct {
	XMLName  xml.Name   `xml:"lore"`
	Version  int        `xml:"version,attr"`
	Exported string     `xml:"exported,attr"`
	Worlds   []xmlWorld `xml:"world"`
}

type xmlWorld struct {
	ID            string            `xml:"id,attr"`
	Created       string            `xml:"created,attr"`
	Modified      string            `xml:"modified,attr"`
	Title         string            `xml:"title"`
	Description   xmlText           `xml:"description"`
	Elements      []xmlElement      `xml:"elements>element"`
	Relationships []xmlRelationship `xml:"relationships>relationship"`
}

type xmlElement struct {
	ID       string   `xml:"id,attr"`
	Type     string   `xml:"type,attr"`
	Created  string   `xml:"created,attr"`
	Modified string   `xml:"modified,attr"`
	Title    string   `xml:"title"`
	Tags     []string `xml:"tags>tag"`
	Content  xmlText  `xml:"content"`
}

type xmlRelationship struct {
	ID            string `xml:"id,attr"`
	Source        string `xml:"source,attr"`
	Target        string `xml:"target,attr"`
	Type          string `xml:"type,attr"`
	Label         string `xml:"label,attr"`
	Bidirectional bool   `xml:"bidirectional,attr"`
	Description   string `xml:",chardata"`
}

// xmlText carries free text as CDATA; encoding/xml splits any "]]>".
// CDATA is written raw, so build it with cdata to drop illegal runes.
type xmlText struct {
	Text string `xml:",cdata"`
}

func cdata(s string) xmlText {
	return xmlText{Text: strings.Map(xmlRune, s)}
}

// xmlRune replaces runes outside the XML 1.0 Char production with U+FFFD,
// as encoding/xml does for character data.
func xmlRune(r rune) rune {
	switch {
	case r == '\t', r == '\n', r == '\r',
		r >= 0x20 && r <= 0xD7FF,
		r >= 0xE000 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0x10FFFF:
		return r
	default:
		return '\uFFFD'
	}
}

// XML writes a structured document with element content in CDATA sections.
type XML struct{}

// Write renders doc as indented XML.
func (XML) Write(w io.Writer, doc *Document) error {
	out := xmlDocument{
		Version:  CanonicalVersion,
		Exported: doc.ExportedAt.UTC().Format(TimeLayout),
		Worlds:   make([]xmlWorld, 0, len(doc.Worlds)),
	}
	for i := range doc.Worlds {
		out.Worlds = append(out.Worlds, toXMLWorld(&doc.Worlds[i]))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func toXMLWorld(w *entities.World) xmlWorld {
	xw := xmlWorld{
		ID:          w.ID,
		Created:     w.CreatedAt.UTC().Format(TimeLayout),
		Modified:    w.ModifiedAt.UTC().Format(TimeLayout),
		Title:       w.Title,
		Description: cdata(w.Description),
	}
	for i := range w.Elements {
		e := &w.Elements[i]
		xw.Elements = append(xw.Elements, xmlElement{
			ID:       e.ID,
			Type:     string(e.Type),
			Created:  e.CreatedAt.UTC().Format(TimeLayout),
			Modified: e.ModifiedAt.UTC().Format(TimeLayout),
			Title:    e.Title,
			Tags:     e.Tags,
			Content:  cdata(e.Content),
		})
	}
	for i := range w.Relationships {
		r := &w.Relationships[i]
		xw.Relationships = append(xw.Relationships, xmlRelationship{
			ID:            r.ID,
			Source:        r.SourceID,
			Target:        r.TargetID,
			Type:          string(r.Type),
			Label:         r.Type.Label(),
			Bidirectional: r.Bidirectional,
			Description:   r.Description,
		})
	}
	return xw
}
