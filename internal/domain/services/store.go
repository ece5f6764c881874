package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

// WorldUpdate lists the world fields to change. Nil fields are left as is.
type WorldUpdate struct {
	Title       *string
	Description *string
}

// ElementUpdate lists the element fields to change. Nil fields are left as is.
type ElementUpdate struct {
	Type    *entities.ElementType
	Title   *string
	Content *string
	Tags    *[]string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithActivityCapacity sets the activity ring capacity.
func WithActivityCapacity(capacity int) StoreOption {
	return func(s *Store) {
		s.activity = NewActivityLog(capacity)
	}
}

// Store is the in-memory world graph. Mutations are serialized through a
// single writer slot and commit atomically; readers never observe a
// partially applied mutation.
//
// Committed worlds are never modified in place. A mutation clones the world
// it touches, edits the clone and swaps it in under the write lock, so a
// failed mutation leaves nothing behind.
type Store struct {
	policy ports.AccessPolicy
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	writer chan struct{}

	mu       sync.RWMutex
	worlds   map[string]*entities.World
	order    []string
	activity *ActivityLog
	revision uint64

	bus eventBus
}

// NewStore creates an empty store bounded by policy.
func NewStore(policy ports.AccessPolicy, opts ...StoreOption) *Store {
	s := &Store{
		policy:   policy,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		writer:   make(chan struct{}, 1),
		worlds:   make(map[string]*entities.World),
		activity: NewActivityLog(DefaultActivityCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every committed activity item. Events are
// delivered after the mutation commits, outside the store locks.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.bus.subscribe(fn)
}

// Activity returns the store's activity log.
func (s *Store) Activity() *ActivityLog {
	return s.activity
}

// change is a validated mutation ready to commit.
type change struct {
	apply    func()
	restored []entities.ActivityItem
	items    []entities.ActivityItem
}

// mutate runs build with exclusive write access and commits its change.
// A nil change with a nil error is a successful no-op.
func (s *Store) mutate(ctx context.Context, build func() (*change, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	ch, err := build()
	if err != nil || ch == nil {
		<-s.writer
		return err
	}

	s.mu.Lock()
	ch.apply()
	s.revision++
	s.activity.Merge(ch.restored)
	events := make([]Event, 0, len(ch.items))
	for _, item := range ch.items {
		events = append(events, newEvent(s.activity.Append(item)))
	}
	s.mu.Unlock()
	<-s.writer

	s.bus.publish(events)
	return nil
}

// Revision counts committed mutations, including those that record no
// activity such as ReindexElement and Replace.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) timestamp() time.Time {
	return entities.Timestamp(s.now())
}

func (s *Store) newItem(kind entities.ActivityKind, w *entities.World, e *entities.Element, detail string) entities.ActivityItem {
	item := entities.ActivityItem{
		ID:         s.newID(),
		Kind:       kind,
		WorldID:    w.ID,
		WorldTitle: w.Title,
		Detail:     detail,
		Timestamp:  s.timestamp(),
	}
	if e != nil {
		item.ElementID = e.ID
		item.ElementTitle = e.Title
		item.ElementType = e.Type
	}
	return item
}

func cleanTitle(field, title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", &entities.InputError{Field: field, Value: title, Message: "must not be empty"}
	}
	return t, nil
}

// CreateWorld creates an empty world and returns its ID.
func (s *Store) CreateWorld(ctx context.Context, title, description string) (string, error) {
	var id string
	err := s.mutate(ctx, func() (*change, error) {
		t, err := cleanTitle("title", title)
		if err != nil {
			return nil, err
		}
		if ceiling := s.policy.MaxWorlds(); ceiling > 0 && len(s.worlds) >= ceiling {
			return nil, &entities.LimitError{Limit: entities.LimitMaxWorlds, Max: ceiling}
		}

		now := s.timestamp()
		w := &entities.World{
			ID:            s.newID(),
			Title:         t,
			Description:   description,
			CreatedAt:     now,
			ModifiedAt:    now,
			Elements:      []entities.Element{},
			Relationships: []entities.Relationship{},
		}
		id = w.ID

		return &change{
			apply: func() {
				s.worlds[w.ID] = w
				s.order = append(s.order, w.ID)
			},
			items: []entities.ActivityItem{s.newItem(entities.ActivityWorldCreated, w, nil, "")},
		}, nil
	})
	if err != nil {
		s.logger.Debug("create world rejected", zap.String("title", title), zap.Error(err))
		return "", err
	}

	s.logger.Debug("world created", zap.String("worldID", id))
	return id, nil
}

// UpdateWorld changes a world's title or description. An update that
// changes nothing records no activity.
func (s *Store) UpdateWorld(ctx context.Context, worldID string, upd WorldUpdate) error {
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok {
			return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
		}

		next := current.Clone()
		var changed []string
		if upd.Title != nil {
			t, err := cleanTitle("title", *upd.Title)
			if err != nil {
				return nil, err
			}
			if t != next.Title {
				next.Title = t
				changed = append(changed, "title")
			}
		}
		if upd.Description != nil && *upd.Description != next.Description {
			next.Description = *upd.Description
			changed = append(changed, "description")
		}
		if len(changed) == 0 {
			return nil, nil
		}
		next.ModifiedAt = s.timestamp()

		return &change{
			apply: func() { s.worlds[worldID] = &next },
			items: []entities.ActivityItem{
				s.newItem(entities.ActivityWorldModified, &next, nil, "changed: "+strings.Join(changed, ", ")),
			},
		}, nil
	})
	if err != nil {
		s.logger.Debug("update world rejected", zap.String("worldID", worldID), zap.Error(err))
		return err
	}

	s.logger.Debug("world updated", zap.String("worldID", worldID))
	return nil
}

// DeleteWorld removes a world with all its elements and relationships.
// Deleting a missing world succeeds without recording activity.
func (s *Store) DeleteWorld(ctx context.Context, worldID string) error {
	err := s.mutate(ctx, func() (*change, error) {
		w, ok := s.worlds[worldID]
		if !ok {
			return nil, nil
		}

		detail := fmt.Sprintf("removed %d elements, %d relationships", len(w.Elements), len(w.Relationships))
		return &change{
			apply: func() {
				delete(s.worlds, worldID)
				for i, id := range s.order {
					if id == worldID {
						s.order = append(s.order[:i:i], s.order[i+1:]...)
						break
					}
				}
			},
			items: []entities.ActivityItem{s.newItem(entities.ActivityWorldDeleted, w, nil, detail)},
		}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("world deleted", zap.String("worldID", worldID))
	return nil
}

// NewElement describes an element to create.
type NewElement struct {
	Type    entities.ElementType
	Title   string
	Content string
	Tags    []string
}

// CreateElement adds an element to a world and returns its ID. Mentions in
// its content are indexed, and other elements of the world that reference
// its title pick it up.
func (s *Store) CreateElement(ctx context.Context, worldID string, in NewElement) (string, error) {
	var id string
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok {
			return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
		}
		if !in.Type.IsValid() {
			return nil, &entities.InputError{Field: "type", Value: string(in.Type), Message: "unknown element type"}
		}
		t, err := cleanTitle("title", in.Title)
		if err != nil {
			return nil, err
		}
		if ceiling := s.policy.MaxElementsPerWorld(); ceiling > 0 && len(current.Elements) >= ceiling {
			return nil, &entities.LimitError{Limit: entities.LimitMaxElementsPerWorld, Max: ceiling, WorldID: worldID}
		}

		now := s.timestamp()
		next := current.Clone()
		next.Elements = append(next.Elements, entities.Element{
			ID:         s.newID(),
			WorldID:    worldID,
			Type:       in.Type,
			Title:      t,
			Content:    in.Content,
			Tags:       entities.NormalizeTags(in.Tags),
			Mentions:   []entities.Mention{},
			CreatedAt:  now,
			ModifiedAt: now,
		})
		created := &next.Elements[len(next.Elements)-1]
		id = created.ID

		idx, err := NewMentionIndexer(next.Elements, s.newID)
		if err != nil {
			return nil, err
		}
		created.Mentions = idx.Index(created.ID, created.Content, nil)
		s.reindexOthers(&next, idx, created.ID)
		next.ModifiedAt = now

		return &change{
			apply: func() { s.worlds[worldID] = &next },
			items: []entities.ActivityItem{s.newItem(entities.ActivityElementCreated, &next, created, "")},
		}, nil
	})
	if err != nil {
		s.logger.Debug("create element rejected", zap.String("worldID", worldID), zap.Error(err))
		return "", err
	}

	s.logger.Debug("element created", zap.String("worldID", worldID), zap.String("elementID", id))
	return id, nil
}

// reindexOthers re-scans every element except skipID, keeping prior
// mentions. Element timestamps are not touched; mentions are derived data.
func (s *Store) reindexOthers(w *entities.World, idx *MentionIndexer, skipID string) {
	for i := range w.Elements {
		e := &w.Elements[i]
		if e.ID == skipID {
			continue
		}
		e.Mentions = idx.Index(e.ID, e.Content, e.Mentions)
	}
}

// UpdateElement changes an element's type, title, content or tags.
func (s *Store) UpdateElement(ctx context.Context, worldID, elementID string, upd ElementUpdate) error {
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok {
			return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
		}
		if current.Element(elementID) == nil {
			return nil, &entities.NotFoundError{Kind: entities.KindElement, ID: elementID}
		}

		next := current.Clone()
		e := next.Element(elementID)
		var changed []string
		var titleChanged, contentChanged bool

		if upd.Type != nil && *upd.Type != e.Type {
			if !upd.Type.IsValid() {
				return nil, &entities.InputError{Field: "type", Value: string(*upd.Type), Message: "unknown element type"}
			}
			e.Type = *upd.Type
			changed = append(changed, "type")
		}
		if upd.Title != nil {
			t, err := cleanTitle("title", *upd.Title)
			if err != nil {
				return nil, err
			}
			if t != e.Title {
				e.Title = t
				titleChanged = true
				changed = append(changed, "title")
			}
		}
		if upd.Content != nil && *upd.Content != e.Content {
			e.Content = *upd.Content
			contentChanged = true
			changed = append(changed, "content")
		}
		if upd.Tags != nil {
			tags := entities.NormalizeTags(*upd.Tags)
			if !equalStrings(tags, e.Tags) {
				e.Tags = tags
				changed = append(changed, "tags")
			}
		}
		if len(changed) == 0 {
			return nil, nil
		}

		if titleChanged || contentChanged {
			idx, err := NewMentionIndexer(next.Elements, s.newID)
			if err != nil {
				return nil, err
			}
			if contentChanged {
				e.Mentions = idx.Index(e.ID, e.Content, nil)
			} else {
				e.Mentions = idx.Index(e.ID, e.Content, e.Mentions)
			}
			if titleChanged {
				s.reindexOthers(&next, idx, e.ID)
			}
		}

		now := s.timestamp()
		e.ModifiedAt = now
		next.ModifiedAt = now

		return &change{
			apply: func() { s.worlds[worldID] = &next },
			items: []entities.ActivityItem{
				s.newItem(entities.ActivityElementModified, &next, e, "changed: "+strings.Join(changed, ", ")),
			},
		}, nil
	})
	if err != nil {
		s.logger.Debug("update element rejected", zap.String("elementID", elementID), zap.Error(err))
		return err
	}

	s.logger.Debug("element updated", zap.String("worldID", worldID), zap.String("elementID", elementID))
	return nil
}

// DeleteElement removes an element, every relationship touching it, and
// every mention of it in the world. Deleting a missing element succeeds
// without recording activity.
func (s *Store) DeleteElement(ctx context.Context, worldID, elementID string) error {
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok || current.Element(elementID) == nil {
			return nil, nil
		}

		next := current.Clone()
		removed := *next.Element(elementID)

		elements := next.Elements[:0]
		for _, e := range next.Elements {
			if e.ID != elementID {
				elements = append(elements, e)
			}
		}
		next.Elements = elements

		rels := make([]entities.Relationship, 0, len(next.Relationships))
		for _, r := range next.Relationships {
			if !r.Involves(elementID) {
				rels = append(rels, r)
			}
		}
		droppedRels := len(next.Relationships) - len(rels)
		next.Relationships = rels

		droppedMentions := 0
		for i := range next.Elements {
			e := &next.Elements[i]
			kept := make([]entities.Mention, 0, len(e.Mentions))
			for _, m := range e.Mentions {
				if m.ElementID != elementID {
					kept = append(kept, m)
				}
			}
			droppedMentions += len(e.Mentions) - len(kept)
			e.Mentions = kept
		}
		next.ModifiedAt = s.timestamp()

		detail := fmt.Sprintf("removed %d relationships, %d mentions", droppedRels, droppedMentions)
		return &change{
			apply: func() { s.worlds[worldID] = &next },
			items: []entities.ActivityItem{s.newItem(entities.ActivityElementDeleted, &next, &removed, detail)},
		}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("element deleted", zap.String("worldID", worldID), zap.String("elementID", elementID))
	return nil
}

// NewRelationship describes a relationship to create.
type NewRelationship struct {
	SourceID      string
	TargetID      string
	Type          entities.RelationType
	Description   string
	Bidirectional bool
}

// CreateRelationship links two elements of the same world and returns the
// relationship ID.
func (s *Store) CreateRelationship(ctx context.Context, worldID string, in NewRelationship) (string, error) {
	var id string
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok {
			return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
		}
		if in.SourceID == in.TargetID {
			return nil, &entities.RelationshipError{Reason: entities.ReasonSelfReference, FromID: in.SourceID, ToID: in.TargetID}
		}
		for _, endpoint := range []string{in.SourceID, in.TargetID} {
			if current.Element(endpoint) == nil && !s.elementExistsLocked(endpoint) {
				return nil, &entities.NotFoundError{Kind: entities.KindElement, ID: endpoint}
			}
		}
		if err := ValidateEndpoints(current, in.SourceID, in.TargetID, in.Type); err != nil {
			return nil, err
		}

		now := s.timestamp()
		next := current.Clone()
		rel := entities.Relationship{
			ID:            s.newID(),
			WorldID:       worldID,
			SourceID:      in.SourceID,
			TargetID:      in.TargetID,
			Type:          in.Type,
			Description:   in.Description,
			Bidirectional: in.Bidirectional,
			CreatedAt:     now,
		}
		next.Relationships = append(next.Relationships, rel)
		next.ModifiedAt = now
		id = rel.ID

		source := next.Element(in.SourceID)
		item := s.newItem(entities.ActivityRelationshipCreated, &next, source,
			fmt.Sprintf("%s %s %s", source.Title, rel.Type.Label(), next.Element(in.TargetID).Title))
		item.RelationshipID = rel.ID

		return &change{
			apply: func() { s.worlds[worldID] = &next },
			items: []entities.ActivityItem{item},
		}, nil
	})
	if err != nil {
		s.logger.Debug("create relationship rejected",
			zap.String("worldID", worldID),
			zap.String("sourceID", in.SourceID),
			zap.String("targetID", in.TargetID),
			zap.Error(err))
		return "", err
	}

	s.logger.Debug("relationship created", zap.String("worldID", worldID), zap.String("relationshipID", id))
	return id, nil
}

// elementExistsLocked reports whether any world holds the element. Callers
// hold the writer slot or the read lock.
func (s *Store) elementExistsLocked(elementID string) bool {
	for _, w := range s.worlds {
		if w.Element(elementID) != nil {
			return true
		}
	}
	return false
}

// DeleteRelationship removes one relationship. Deleting a missing
// relationship succeeds without recording activity.
func (s *Store) DeleteRelationship(ctx context.Context, worldID, relationshipID string) error {
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok {
			return nil, nil
		}

		next := current.Clone()
		var removed *entities.Relationship
		rels := make([]entities.Relationship, 0, len(next.Relationships))
		for i := range next.Relationships {
			if next.Relationships[i].ID == relationshipID {
				r := next.Relationships[i]
				removed = &r
				continue
			}
			rels = append(rels, next.Relationships[i])
		}
		if removed == nil {
			return nil, nil
		}
		next.Relationships = rels
		next.ModifiedAt = s.timestamp()

		source := next.Element(removed.SourceID)
		detail := removed.Type.Label()
		if target := next.Element(removed.TargetID); source != nil && target != nil {
			detail = fmt.Sprintf("%s %s %s", source.Title, removed.Type.Label(), target.Title)
		}
		item := s.newItem(entities.ActivityRelationshipDeleted, &next, source, detail)
		item.RelationshipID = removed.ID

		return &change{
			apply: func() { s.worlds[worldID] = &next },
			items: []entities.ActivityItem{item},
		}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("relationship deleted", zap.String("worldID", worldID), zap.String("relationshipID", relationshipID))
	return nil
}

// ReindexElement re-scans one element's content from scratch and returns
// the resulting mentions. It records no activity.
func (s *Store) ReindexElement(ctx context.Context, worldID, elementID string) ([]entities.Mention, error) {
	var mentions []entities.Mention
	err := s.mutate(ctx, func() (*change, error) {
		current, ok := s.worlds[worldID]
		if !ok {
			return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
		}
		if current.Element(elementID) == nil {
			return nil, &entities.NotFoundError{Kind: entities.KindElement, ID: elementID}
		}

		next := current.Clone()
		idx, err := NewMentionIndexer(next.Elements, s.newID)
		if err != nil {
			return nil, err
		}
		e := next.Element(elementID)
		e.Mentions = idx.Index(e.ID, e.Content, nil)
		mentions = append([]entities.Mention{}, e.Mentions...)

		return &change{apply: func() { s.worlds[worldID] = &next }}, nil
	})
	if err != nil {
		return nil, err
	}
	return mentions, nil
}

// World returns a copy of one world with its elements ordered by title.
func (s *Store) World(worldID string) (entities.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.worlds[worldID]
	if !ok {
		return entities.World{}, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
	}
	return canonicalCopy(w), nil
}

// Worlds returns copies of all worlds in creation order.
func (s *Store) Worlds() []entities.World {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.World, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, canonicalCopy(s.worlds[id]))
	}
	return result
}

// WorldCount returns the number of worlds.
func (s *Store) WorldCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.worlds)
}

// Element returns a copy of one element.
func (s *Store) Element(worldID, elementID string) (entities.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.worlds[worldID]
	if !ok {
		return entities.Element{}, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
	}
	e := w.Element(elementID)
	if e == nil {
		return entities.Element{}, &entities.NotFoundError{Kind: entities.KindElement, ID: elementID}
	}
	return e.Clone(), nil
}

// Elements returns copies of a world's elements ordered by title.
func (s *Store) Elements(worldID string) ([]entities.Element, error) {
	w, err := s.World(worldID)
	if err != nil {
		return nil, err
	}
	return w.Elements, nil
}

// Relationships returns a world's relationships in insertion order.
func (s *Store) Relationships(worldID string) ([]entities.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.worlds[worldID]
	if !ok {
		return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
	}
	return append([]entities.Relationship{}, w.Relationships...), nil
}

// RelationshipsFor renders every relationship touching an element from that
// element's side.
func (s *Store) RelationshipsFor(worldID, elementID string) ([]RelationshipView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.worlds[worldID]
	if !ok {
		return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: worldID}
	}
	if w.Element(elementID) == nil {
		return nil, &entities.NotFoundError{Kind: entities.KindElement, ID: elementID}
	}
	return ViewRelationships(w, elementID), nil
}

// Backlink is a mention of an element found in another element's content.
type Backlink struct {
	SourceID    string
	SourceTitle string
	Mention     entities.Mention
}

// MentionsOf returns every mention of elementID in its world, ordered by
// source title and offset.
func (s *Store) MentionsOf(worldID, elementID string) ([]Backlink, error) {
	w, err := s.World(worldID)
	if err != nil {
		return nil, err
	}
	if w.Element(elementID) == nil {
		return nil, &entities.NotFoundError{Kind: entities.KindElement, ID: elementID}
	}

	var links []Backlink
	for _, e := range w.Elements {
		for _, m := range e.Mentions {
			if m.ElementID == elementID {
				links = append(links, Backlink{SourceID: e.ID, SourceTitle: e.Title, Mention: m})
			}
		}
	}
	return links, nil
}

// Snapshot is a point-in-time deep copy of part or all of the graph.
type Snapshot struct {
	Worlds   []entities.World
	Activity []entities.ActivityItem
	TakenAt  time.Time
}

// Snapshot copies the requested worlds, or all worlds when none are named,
// together with their activity items (newest first). Unknown IDs fail with
// NotFound.
func (s *Store) Snapshot(worldIDs ...string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order
	if len(worldIDs) > 0 {
		ids = make([]string, 0, len(worldIDs))
		seen := make(map[string]bool, len(worldIDs))
		for _, id := range worldIDs {
			if _, ok := s.worlds[id]; !ok {
				return nil, &entities.NotFoundError{Kind: entities.KindWorld, ID: id}
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		sort.SliceStable(ids, func(i, j int) bool { return s.position(ids[i]) < s.position(ids[j]) })
	}

	snap := &Snapshot{
		Worlds:  make([]entities.World, 0, len(ids)),
		TakenAt: s.timestamp(),
	}
	include := make(map[string]bool, len(ids))
	for _, id := range ids {
		snap.Worlds = append(snap.Worlds, canonicalCopy(s.worlds[id]))
		include[id] = true
	}

	all := s.activity.Query(ActivityFilter{})
	if len(worldIDs) == 0 {
		snap.Activity = all
	} else {
		snap.Activity = make([]entities.ActivityItem, 0, len(all))
		for _, item := range all {
			if include[item.WorldID] {
				snap.Activity = append(snap.Activity, item)
			}
		}
	}
	return snap, nil
}

func (s *Store) position(worldID string) int {
	for i, id := range s.order {
		if id == worldID {
			return i
		}
	}
	return len(s.order)
}

// Replace swaps the whole graph and activity log for restored state. It
// records no activity and emits no events.
func (s *Store) Replace(ctx context.Context, worlds []entities.World, activity []entities.ActivityItem) error {
	return s.mutate(ctx, func() (*change, error) {
		byID := make(map[string]*entities.World, len(worlds))
		order := make([]string, 0, len(worlds))
		for i := range worlds {
			w := worlds[i].Clone()
			if _, dup := byID[w.ID]; dup {
				return nil, &entities.InputError{Field: "world.id", Value: w.ID, Message: "duplicate world id"}
			}
			byID[w.ID] = &w
			order = append(order, w.ID)
		}
		return &change{apply: func() {
			s.worlds = byID
			s.order = order
			s.activity.Restore(activity)
		}}, nil
	})
}

// insertion is one world to add during an import, plus the activity items
// to restore for it.
type insertion struct {
	world    entities.World
	restored []entities.ActivityItem
}

// checkInsert validates an import batch against the current state without
// committing it.
func (s *Store) checkInsert(batch []insertion) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validateInsertLocked(batch)
}

func (s *Store) validateInsertLocked(batch []insertion) error {
	if ceiling := s.policy.MaxWorlds(); ceiling > 0 && len(s.worlds)+len(batch) > ceiling {
		return &entities.LimitError{Limit: entities.LimitMaxWorlds, Max: ceiling}
	}

	var conflicts []entities.WorldConflict
	for i := range batch {
		w := &batch[i].world
		if existing, taken := s.worlds[w.ID]; taken {
			conflicts = append(conflicts, entities.WorldConflict{
				WorldID:       w.ID,
				ExistingTitle: existing.Title,
				IncomingTitle: w.Title,
			})
			continue
		}
		if ceiling := s.policy.MaxElementsPerWorld(); ceiling > 0 && len(w.Elements) > ceiling {
			return &entities.LimitError{Limit: entities.LimitMaxElementsPerWorld, Max: ceiling, WorldID: w.ID}
		}
		for j := range w.Elements {
			if s.elementExistsLocked(w.Elements[j].ID) {
				return &entities.InputError{Field: "element.id", Value: w.Elements[j].ID, Message: "element id already in use"}
			}
		}
	}
	if len(conflicts) > 0 {
		return &entities.ConflictError{Conflicts: conflicts}
	}
	return nil
}

// insertWorlds adds validated worlds in one commit. Restored activity goes
// first, then one item per created world, element and relationship.
func (s *Store) insertWorlds(ctx context.Context, batch []insertion) error {
	return s.mutate(ctx, func() (*change, error) {
		if len(batch) == 0 {
			return nil, nil
		}
		if err := s.validateInsertLocked(batch); err != nil {
			return nil, err
		}

		var restored []entities.ActivityItem
		var created []entities.ActivityItem
		for i := range batch {
			w := &batch[i].world
			restored = append(restored, batch[i].restored...)
			created = append(created, s.newItem(entities.ActivityWorldCreated, w, nil, "imported"))
			for j := range w.Elements {
				created = append(created, s.newItem(entities.ActivityElementCreated, w, &w.Elements[j], "imported"))
			}
			for j := range w.Relationships {
				rel := &w.Relationships[j]
				item := s.newItem(entities.ActivityRelationshipCreated, w, w.Element(rel.SourceID), "imported")
				item.RelationshipID = rel.ID
				created = append(created, item)
			}
		}

		// Restored items are merged oldest first.
		sort.SliceStable(restored, func(i, j int) bool { return restored[i].Seq < restored[j].Seq })

		return &change{
			apply: func() {
				for i := range batch {
					w := batch[i].world.Clone()
					s.worlds[w.ID] = &w
					s.order = append(s.order, w.ID)
				}
			},
			restored: restored,
			items:    created,
		}, nil
	})
}

// canonicalCopy deep-copies a world with elements ordered by title and
// mentions ordered by offset.
func canonicalCopy(w *entities.World) entities.World {
	c := w.Clone()
	entities.SortElements(c.Elements)
	for i := range c.Elements {
		m := c.Elements[i].Mentions
		sort.SliceStable(m, func(a, b int) bool { return m[a].Offset < m[b].Offset })
	}
	return c
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
