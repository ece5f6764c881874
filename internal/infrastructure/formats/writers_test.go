package formats

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func sampleDocument() *Document {
	return &Document{Worlds: []entities.World{sampleWorld()}, ExportedAt: testTime}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     entities.ExportFormat
		ok       bool
	}{
		{"world.json", entities.FormatCanonical, true},
		{"world.MD", entities.FormatMarkdown, true},
		{"world.markdown", entities.FormatMarkdown, true},
		{"world.txt", entities.FormatText, true},
		{"world.csv", entities.FormatCSV, true},
		{"world.xml", entities.FormatXML, true},
		{"world.pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := ForFile(tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, err := Encode("pdf", sampleDocument())
	assert.ErrorIs(t, err, entities.ErrFormatUnsupported)
}

func TestText_Write(t *testing.T) {
	data, err := Encode(entities.FormatText, sampleDocument())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Eldoria\n=======\n")
	assert.Contains(t, out, "[Location] Castle")
	assert.Contains(t, out, "Tags: fortress, royal")
	assert.Contains(t, out, "-> Located In: Castle")
	assert.Contains(t, out, "-> Contains: Hero")
	assert.Contains(t, out, "-> Owned By: Castle - cyclic\n")
}

func TestMarkdown_Write(t *testing.T) {
	doc := sampleDocument()
	doc.Worlds[0].Elements[0].Title = "Castle | Keep"

	data, err := Encode(entities.FormatMarkdown, doc)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "## Eldoria")
	assert.Contains(t, out, `| Location | Castle \| Keep | fortress, royal |`)
	assert.Contains(t, out, "### Castle | Keep")
	assert.Contains(t, out, "- Located In: Castle | Keep")
	assert.Contains(t, out, "- Owns: Hero - cyclic")
}

func TestRelationshipLines(t *testing.T) {
	world := sampleWorld()
	world.Relationships[0].Bidirectional = true
	world.Relationships[0].Description = "since\nthe *siege*"
	titles := elementTitles(&world)

	assert.Equal(t, []string{
		"Located In: Castle (bidirectional) - since the *siege*",
	}, relationshipLines(&world, titles, "hero")[:1])
	assert.Equal(t, []string{
		"Contains: Hero (bidirectional) - since the *siege*",
		"Owns: Hero - cyclic",
	}, relationshipLines(&world, titles, "castle"))

	data, err := Encode(entities.FormatMarkdown, &Document{Worlds: []entities.World{world}, ExportedAt: testTime})
	require.NoError(t, err)
	assert.Contains(t, string(data), `- Contains: Hero (bidirectional) - since the \*siege\*`)
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"a|b", `a\|b`},
		{"line1\nline2", "line1 line2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeMarkdown(tt.input))
	}

	assert.Equal(t, `\*bold\* \#1`, escapeInline("*bold* #1"))
	assert.Equal(t, "text\n\\# not a heading", escapeBlock("text\n# not a heading"))
}

func TestCSV_Write(t *testing.T) {
	data, err := Encode(entities.FormatCSV, sampleDocument())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])

	castle := records[1]
	assert.Equal(t, "Eldoria", castle[0])
	assert.Equal(t, "location", castle[1])
	assert.Equal(t, "Castle", castle[2])
	assert.Equal(t, "Stone | walls, \"old\"\nsecond line ]]> end", castle[3])
	assert.Equal(t, "fortress; royal", castle[4])
	assert.Equal(t, "2026-03-01T09:30:00.123456789Z", castle[5])
	assert.Equal(t, "Contains: Hero; Owns: Hero - cyclic", castle[7])
}

func TestXML_Write(t *testing.T) {
	data, err := Encode(entities.FormatXML, sampleDocument())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))
	assert.Contains(t, string(data), "<![CDATA[")

	var parsed xmlDocument
	require.NoError(t, xml.Unmarshal(data, &parsed))
	require.Len(t, parsed.Worlds, 1)

	w := parsed.Worlds[0]
	assert.Equal(t, "Mist & \"marble\" <towers>", w.Description.Text)
	require.Len(t, w.Elements, 2)
	assert.Equal(t, "Stone | walls, \"old\"\nsecond line ]]> end", w.Elements[0].Content.Text)
	assert.Equal(t, []string{"fortress", "royal"}, w.Elements[0].Tags)
	require.Len(t, w.Relationships, 2)
	assert.Equal(t, "Located In", w.Relationships[0].Label)
	assert.Equal(t, "cyclic", w.Relationships[1].Description)
}

func TestXML_WriteDropsIllegalRunes(t *testing.T) {
	doc := sampleDocument()
	doc.Worlds[0].Description = "bell\x07 and \x01"
	doc.Worlds[0].Elements[0].Content = "tab\tok\x1b[0m \uFFFE end"

	data, err := Encode(entities.FormatXML, doc)
	require.NoError(t, err)

	var parsed xmlDocument
	require.NoError(t, xml.Unmarshal(data, &parsed))
	w := parsed.Worlds[0]
	assert.Equal(t, "bell\uFFFD and \uFFFD", w.Description.Text)
	assert.Equal(t, "tab\tok\uFFFD[0m \uFFFD end", w.Elements[0].Content.Text)
}
