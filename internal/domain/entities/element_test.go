package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElementType(t *testing.T) {
	for _, et := range AllElementTypes {
		got, err := ParseElementType(string(et))
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}

	got, err := ParseElementType(" Location ")
	require.NoError(t, err)
	assert.Equal(t, ElementLocation, got)

	_, err = ParseElementType("spaceship")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"magic", " Royal ", "", "royal", "ancient"})
	assert.Equal(t, []string{"Royal", "ancient", "magic"}, got)
	assert.Empty(t, NormalizeTags(nil))
}

func TestSortElements(t *testing.T) {
	now := time.Now()
	elements := []Element{
		{ID: "c", Title: "Castle", CreatedAt: now},
		{ID: "b", Title: "Alice", CreatedAt: now.Add(time.Second)},
		{ID: "a", Title: "Alice", CreatedAt: now},
	}
	SortElements(elements)
	assert.Equal(t, "a", elements[0].ID)
	assert.Equal(t, "b", elements[1].ID)
	assert.Equal(t, "c", elements[2].ID)
}

func TestMention_Within(t *testing.T) {
	assert.True(t, Mention{Offset: 9, Length: 7}.Within(16))
	assert.False(t, Mention{Offset: 10, Length: 7}.Within(16))
	assert.False(t, Mention{Offset: -1, Length: 2}.Within(16))
	assert.False(t, Mention{Offset: 0, Length: 0}.Within(16))
}

func TestErrors_MatchKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", &NotFoundError{Kind: KindWorld, ID: "w1"}, ErrNotFound},
		{"limit", &LimitError{Limit: LimitMaxWorlds, Max: 3}, ErrLimitExceeded},
		{"relationship", &RelationshipError{Reason: ReasonSelfReference}, ErrInvalidRelationship},
		{"format", &FormatError{Format: "pdf"}, ErrFormatUnsupported},
		{"decode", &DecodeError{Reason: "bad"}, ErrDecodeFailure},
		{"conflict", &ConflictError{}, ErrImportConflict},
		{"provider", &ProviderError{Provider: "x"}, ErrProviderUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := errors.Join(errors.New("context"), tt.err)
			assert.True(t, errors.Is(wrapped, tt.kind))
		})
	}

	var limitErr *LimitError
	require.True(t, errors.As(&LimitError{Limit: LimitMaxWorlds, Max: 3}, &limitErr))
	assert.Equal(t, 3, limitErr.Max)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("canonical")
	require.NoError(t, err)
	assert.Equal(t, FormatCanonical, f)
	assert.False(t, f.IsOneWay())

	f, err = ParseExportFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	assert.Equal(t, ".md", f.Extension())

	_, err = ParseExportFormat("pdf")
	assert.True(t, errors.Is(err, ErrFormatUnsupported))
}
