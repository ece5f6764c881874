package entities

// Mention is an in-text reference from a span of an element's content to
// another element. Offset and Length count characters (runes), not bytes.
type Mention struct {
	ID           string `json:"id"`
	ElementID    string `json:"element_id"`
	ElementTitle string `json:"element_title"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
}

// End returns the exclusive end offset of the span.
func (m Mention) End() int {
	return m.Offset + m.Length
}

// Within reports whether the span lies inside content of the given length.
func (m Mention) Within(contentLen int) bool {
	return m.Offset >= 0 && m.Length > 0 && m.End() <= contentLen
}
