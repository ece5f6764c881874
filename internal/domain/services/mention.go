package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

// mentionTarget is the element a lowered title pattern resolves to.
type mentionTarget struct {
	elementID string
	title     string
}

// MentionIndexer resolves "@title" references in element content against
// the element titles of one world. Titles are matched case-insensitively
// with an Aho-Corasick automaton built over the lowered titles.
type MentionIndexer struct {
	ac      *ahocorasick.Automaton
	targets []mentionTarget
	titles  map[string]string // element ID -> current title
	newID   func() string
}

// NewMentionIndexer compiles the titles of a world's elements. When two
// elements share a title the earliest created one wins.
func NewMentionIndexer(elements []entities.Element, newID func() string) (*MentionIndexer, error) {
	ordered := make([]*entities.Element, len(elements))
	for i := range elements {
		ordered[i] = &elements[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	idx := &MentionIndexer{
		titles: make(map[string]string, len(elements)),
		newID:  newID,
	}

	seen := make(map[string]bool, len(elements))
	patterns := make([]string, 0, len(elements))
	for _, e := range ordered {
		idx.titles[e.ID] = e.Title
		key := lowerRunes(strings.TrimSpace(e.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		patterns = append(patterns, key)
		idx.targets = append(idx.targets, mentionTarget{elementID: e.ID, title: e.Title})
	}

	if len(patterns) == 0 {
		return idx, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building title automaton: %w", err)
	}
	idx.ac = automaton

	return idx, nil
}

// Index computes the mention list for content owned by selfID.
//
// Prior mentions are kept when their target still exists and their span
// still fits the content; their denormalized title is refreshed. Callers
// pass nil prior when the content itself changed. Remaining "@" runs are
// resolved left to right; a span never overlaps an earlier one.
func (idx *MentionIndexer) Index(selfID, content string, prior []entities.Mention) []entities.Mention {
	runes := []rune(content)
	n := len(runes)

	result := make([]entities.Mention, 0, len(prior))
	for _, m := range prior {
		title, ok := idx.titles[m.ElementID]
		if !ok || m.ElementID == selfID || !m.Within(n) {
			continue
		}
		if overlapsAny(result, m.Offset, m.End()) {
			continue
		}
		m.ElementTitle = title
		result = append(result, m)
	}

	for _, c := range idx.candidates(runes) {
		if c.target.elementID == selfID || overlapsAny(result, c.start, c.end) {
			continue
		}
		result = append(result, entities.Mention{
			ID:           idx.newID(),
			ElementID:    c.target.elementID,
			ElementTitle: c.target.title,
			Offset:       c.start,
			Length:       c.end - c.start,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Offset < result[j].Offset })
	return result
}

// Title returns the current title of an indexed element.
func (idx *MentionIndexer) Title(elementID string) (string, bool) {
	t, ok := idx.titles[elementID]
	return t, ok
}

// mentionCandidate is the chosen match for one "@" position, in rune offsets.
// start is the position of the "@"; end is exclusive.
type mentionCandidate struct {
	start  int
	end    int
	target mentionTarget
}

// candidates returns at most one candidate per "@", ordered by position.
func (idx *MentionIndexer) candidates(runes []rune) []mentionCandidate {
	if idx.ac == nil || len(runes) == 0 {
		return nil
	}

	lowered := lowerRunes(string(runes))
	byteToRune := runeIndex(lowered)

	best := make(map[int]mentionCandidate)
	bestCovers := make(map[int]bool)

	for _, m := range idx.ac.FindAllOverlapping([]byte(lowered)) {
		titleStart, titleEnd := byteToRune[m.Start], byteToRune[m.End]
		if titleStart < 1 || titleEnd < 0 || runes[titleStart-1] != '@' {
			continue
		}
		at := titleStart - 1
		tokenEnd := tokenEndAt(runes, titleStart)

		if titleEnd < len(runes) && isWordRune(runes[titleEnd]) {
			continue
		}
		covers := titleEnd >= tokenEnd

		current, ok := best[at]
		switch {
		case !ok:
		case covers && !bestCovers[at]:
		case covers == bestCovers[at] && titleEnd > current.end:
		default:
			continue
		}
		best[at] = mentionCandidate{start: at, end: titleEnd, target: idx.targets[m.PatternID]}
		bestCovers[at] = covers
	}

	result := make([]mentionCandidate, 0, len(best))
	for _, c := range best {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].start < result[j].start })
	return result
}

// tokenEndAt returns the end of the non-whitespace run starting at i.
func tokenEndAt(runes []rune, i int) int {
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lowerRunes lowercases rune by rune so the rune count never changes.
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// runeIndex maps every byte offset of s that starts a rune (plus len(s))
// to its rune index; other offsets map to -1.
func runeIndex(s string) []int {
	index := make([]int, len(s)+1)
	for i := range index {
		index[i] = -1
	}
	r := 0
	for b := range s {
		index[b] = r
		r++
	}
	index[len(s)] = r
	return index
}

func overlapsAny(mentions []entities.Mention, start, end int) bool {
	for i := range mentions {
		if start < mentions[i].End() && mentions[i].Offset < end {
			return true
		}
	}
	return false
}
