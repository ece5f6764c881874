package formats

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

// CanonicalVersion is the schema version written to and required from
// canonical documents.
const CanonicalVersion = 1

// TimeLayout is the fixed-width UTC timestamp layout of the canonical format.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// stamp is a time.Time that serializes with TimeLayout.
type stamp time.Time

func (s stamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(s).UTC().Format(TimeLayout))
}

func (s *stamp) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return err
	}
	*s = stamp(entities.Timestamp(t))
	return nil
}

func (s stamp) time() time.Time {
	return entities.Timestamp(time.Time(s))
}

type documentDTO struct {
	Version    int           `json:"version"`
	ExportedAt stamp         `json:"exportDate"`
	Worlds     []worldDTO    `json:"worlds"`
	Activity   []activityDTO `json:"recentActivity"`
}

type worldDTO struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	CreatedAt     stamp             `json:"created_at"`
	ModifiedAt    stamp             `json:"modified_at"`
	Elements      []elementDTO      `json:"elements"`
	Relationships []relationshipDTO `json:"relationships"`
}

type elementDTO struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Tags       []string     `json:"tags"`
	Mentions   []mentionDTO `json:"mentions"`
	CreatedAt  stamp        `json:"created_at"`
	ModifiedAt stamp        `json:"modified_at"`
}

type mentionDTO struct {
	ID           string `json:"id"`
	ElementID    string `json:"element_id"`
	ElementTitle string `json:"element_title"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
}

type relationshipDTO struct {
	ID            string `json:"id"`
	SourceID      string `json:"source_id"`
	TargetID      string `json:"target_id"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	Bidirectional bool   `json:"bidirectional"`
	CreatedAt     stamp  `json:"created_at"`
}

type activityDTO struct {
	ID             string `json:"id"`
	Seq            uint64 `json:"seq"`
	Kind           string `json:"kind"`
	WorldID        string `json:"world_id"`
	WorldTitle     string `json:"world_title"`
	ElementID      string `json:"element_id,omitempty"`
	ElementTitle   string `json:"element_title,omitempty"`
	ElementType    string `json:"element_type,omitempty"`
	RelationshipID string `json:"relationship_id,omitempty"`
	Detail         string `json:"detail,omitempty"`
	Timestamp      stamp  `json:"timestamp"`
}

type activityLogDTO struct {
	Version int           `json:"version"`
	Items   []activityDTO `json:"items"`
}

// Canonical writes the lossless, importable JSON document.
type Canonical struct{}

// Write encodes doc as indented canonical JSON.
func (Canonical) Write(w io.Writer, doc *Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(toDocumentDTO(doc))
}

func toDocumentDTO(doc *Document) documentDTO {
	dto := documentDTO{
		Version:    CanonicalVersion,
		ExportedAt: stamp(doc.ExportedAt),
		Worlds:     make([]worldDTO, 0, len(doc.Worlds)),
		Activity:   toActivityDTOs(doc.Activity),
	}
	for i := range doc.Worlds {
		dto.Worlds = append(dto.Worlds, toWorldDTO(&doc.Worlds[i]))
	}
	return dto
}

func toWorldDTO(w *entities.World) worldDTO {
	dto := worldDTO{
		ID:            w.ID,
		Title:         w.Title,
		Description:   w.Description,
		CreatedAt:     stamp(w.CreatedAt),
		ModifiedAt:    stamp(w.ModifiedAt),
		Elements:      make([]elementDTO, 0, len(w.Elements)),
		Relationships: make([]relationshipDTO, 0, len(w.Relationships)),
	}
	for i := range w.Elements {
		e := &w.Elements[i]
		el := elementDTO{
			ID:         e.ID,
			Type:       string(e.Type),
			Title:      e.Title,
			Content:    e.Content,
			Tags:       append([]string{}, e.Tags...),
			Mentions:   make([]mentionDTO, 0, len(e.Mentions)),
			CreatedAt:  stamp(e.CreatedAt),
			ModifiedAt: stamp(e.ModifiedAt),
		}
		for _, m := range e.Mentions {
			el.Mentions = append(el.Mentions, mentionDTO(m))
		}
		dto.Elements = append(dto.Elements, el)
	}
	for i := range w.Relationships {
		r := &w.Relationships[i]
		dto.Relationships = append(dto.Relationships, relationshipDTO{
			ID:            r.ID,
			SourceID:      r.SourceID,
			TargetID:      r.TargetID,
			Type:          string(r.Type),
			Description:   r.Description,
			Bidirectional: r.Bidirectional,
			CreatedAt:     stamp(r.CreatedAt),
		})
	}
	return dto
}

func toActivityDTOs(items []entities.ActivityItem) []activityDTO {
	dtos := make([]activityDTO, 0, len(items))
	for i := range items {
		it := &items[i]
		dtos = append(dtos, activityDTO{
			ID:             it.ID,
			Seq:            it.Seq,
			Kind:           string(it.Kind),
			WorldID:        it.WorldID,
			WorldTitle:     it.WorldTitle,
			ElementID:      it.ElementID,
			ElementTitle:   it.ElementTitle,
			ElementType:    string(it.ElementType),
			RelationshipID: it.RelationshipID,
			Detail:         it.Detail,
			Timestamp:      stamp(it.Timestamp),
		})
	}
	return dtos
}

// Decode parses and validates a canonical document. Every failure is a
// *entities.DecodeError; nothing is partially returned.
func Decode(data []byte) (*Document, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &entities.DecodeError{Reason: "malformed JSON", Err: err}
	}
	if probe.Version == nil {
		return nil, &entities.DecodeError{Reason: "missing version"}
	}
	if *probe.Version != CanonicalVersion {
		return nil, &entities.DecodeError{Reason: fmt.Sprintf("unsupported version %d (want %d)", *probe.Version, CanonicalVersion)}
	}

	var dto documentDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, &entities.DecodeError{Reason: "malformed document", Err: err}
	}

	doc := &Document{
		ExportedAt: dto.ExportedAt.time(),
		Worlds:     make([]entities.World, 0, len(dto.Worlds)),
	}

	ids := make(map[string]string)
	claim := func(kind, id string) error {
		if id == "" {
			return &entities.DecodeError{Reason: kind + " with empty id"}
		}
		if prev, taken := ids[id]; taken {
			return &entities.DecodeError{Reason: fmt.Sprintf("duplicate id %s (%s and %s)", id, prev, kind)}
		}
		ids[id] = kind
		return nil
	}

	for i := range dto.Worlds {
		w, err := fromWorldDTO(&dto.Worlds[i], claim)
		if err != nil {
			return nil, err
		}
		doc.Worlds = append(doc.Worlds, w)
	}

	activity, err := fromActivityDTOs(dto.Activity)
	if err != nil {
		return nil, err
	}
	doc.Activity = activity

	return doc, nil
}

func fromWorldDTO(dto *worldDTO, claim func(kind, id string) error) (entities.World, error) {
	if err := claim(entities.KindWorld, dto.ID); err != nil {
		return entities.World{}, err
	}
	if dto.Title == "" {
		return entities.World{}, &entities.DecodeError{Reason: "world " + dto.ID + " has an empty title"}
	}

	w := entities.World{
		ID:            dto.ID,
		Title:         dto.Title,
		Description:   dto.Description,
		CreatedAt:     dto.CreatedAt.time(),
		ModifiedAt:    dto.ModifiedAt.time(),
		Elements:      make([]entities.Element, 0, len(dto.Elements)),
		Relationships: make([]entities.Relationship, 0, len(dto.Relationships)),
	}

	for i := range dto.Elements {
		el := &dto.Elements[i]
		if err := claim(entities.KindElement, el.ID); err != nil {
			return entities.World{}, err
		}
		typ := entities.ElementType(el.Type)
		if !typ.IsValid() {
			return entities.World{}, &entities.DecodeError{Reason: fmt.Sprintf("element %s has unknown type %q", el.ID, el.Type)}
		}
		if el.Title == "" {
			return entities.World{}, &entities.DecodeError{Reason: "element " + el.ID + " has an empty title"}
		}
		e := entities.Element{
			ID:         el.ID,
			WorldID:    w.ID,
			Type:       typ,
			Title:      el.Title,
			Content:    el.Content,
			Tags:       entities.NormalizeTags(el.Tags),
			Mentions:   make([]entities.Mention, 0, len(el.Mentions)),
			CreatedAt:  el.CreatedAt.time(),
			ModifiedAt: el.ModifiedAt.time(),
		}
		for _, m := range el.Mentions {
			e.Mentions = append(e.Mentions, entities.Mention(m))
		}
		w.Elements = append(w.Elements, e)
	}

	// Mentions and relationships may only point inside their own world.
	contentLen := make(map[string]int, len(w.Elements))
	for i := range w.Elements {
		contentLen[w.Elements[i].ID] = len([]rune(w.Elements[i].Content))
	}
	for i := range w.Elements {
		e := &w.Elements[i]
		for _, m := range e.Mentions {
			if _, ok := contentLen[m.ElementID]; !ok || m.ElementID == e.ID {
				return entities.World{}, &entities.DecodeError{Reason: fmt.Sprintf("element %s mentions unknown element %s", e.ID, m.ElementID)}
			}
			if !m.Within(contentLen[e.ID]) {
				return entities.World{}, &entities.DecodeError{Reason: fmt.Sprintf("element %s has a mention outside its content", e.ID)}
			}
		}
	}

	for i := range dto.Relationships {
		r := &dto.Relationships[i]
		if err := claim(entities.KindRelationship, r.ID); err != nil {
			return entities.World{}, err
		}
		typ := entities.RelationType(r.Type)
		if !typ.IsValid() {
			return entities.World{}, &entities.DecodeError{Reason: fmt.Sprintf("relationship %s has unknown type %q", r.ID, r.Type)}
		}
		_, okSource := contentLen[r.SourceID]
		_, okTarget := contentLen[r.TargetID]
		if !okSource || !okTarget || r.SourceID == r.TargetID {
			return entities.World{}, &entities.DecodeError{Reason: fmt.Sprintf("relationship %s has invalid endpoints", r.ID)}
		}
		w.Relationships = append(w.Relationships, entities.Relationship{
			ID:            r.ID,
			WorldID:       w.ID,
			SourceID:      r.SourceID,
			TargetID:      r.TargetID,
			Type:          typ,
			Description:   r.Description,
			Bidirectional: r.Bidirectional,
			CreatedAt:     r.CreatedAt.time(),
		})
	}

	return w, nil
}

func fromActivityDTOs(dtos []activityDTO) ([]entities.ActivityItem, error) {
	items := make([]entities.ActivityItem, 0, len(dtos))
	for i := range dtos {
		d := &dtos[i]
		kind := entities.ActivityKind(d.Kind)
		if !kind.IsValid() {
			return nil, &entities.DecodeError{Reason: fmt.Sprintf("activity item %s has unknown kind %q", d.ID, d.Kind)}
		}
		items = append(items, entities.ActivityItem{
			ID:             d.ID,
			Seq:            d.Seq,
			Kind:           kind,
			WorldID:        d.WorldID,
			WorldTitle:     d.WorldTitle,
			ElementID:      d.ElementID,
			ElementTitle:   d.ElementTitle,
			ElementType:    entities.ElementType(d.ElementType),
			RelationshipID: d.RelationshipID,
			Detail:         d.Detail,
			Timestamp:      d.Timestamp.time(),
		})
	}
	return items, nil
}

// EncodeActivity renders the activity log blob, oldest item first.
func EncodeActivity(items []entities.ActivityItem) ([]byte, error) {
	data, err := json.Marshal(activityLogDTO{Version: CanonicalVersion, Items: toActivityDTOs(items)})
	if err != nil {
		return nil, fmt.Errorf("encoding activity: %w", err)
	}
	return data, nil
}

// DecodeActivity parses an activity log blob.
func DecodeActivity(data []byte) ([]entities.ActivityItem, error) {
	var dto activityLogDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, &entities.DecodeError{Reason: "malformed activity log", Err: err}
	}
	if dto.Version != CanonicalVersion {
		return nil, &entities.DecodeError{Reason: fmt.Sprintf("unsupported activity log version %d", dto.Version)}
	}
	return fromActivityDTOs(dto.Items)
}
