package services

import (
	"sort"
	"sync"
	"time"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

// DefaultActivityCapacity is the number of activity items retained by default.
const DefaultActivityCapacity = 100

// ActivityFilter selects activity items. Zero values match everything.
type ActivityFilter struct {
	WorldID string
	Kinds   []entities.ActivityKind
	Since   time.Time
	Limit   int
}

func (f *ActivityFilter) matches(item *entities.ActivityItem) bool {
	if f.WorldID != "" && item.WorldID != f.WorldID {
		return false
	}
	if !f.Since.IsZero() && item.Timestamp.Before(f.Since) {
		return false
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if item.Kind == k {
			return true
		}
	}
	return false
}

// ActivityLog is a fixed-capacity ring of activity items. Appending to a
// full log evicts the oldest item. Insertion order (Seq) is the total order
// used for newest-first queries.
type ActivityLog struct {
	mu      sync.RWMutex
	items   []entities.ActivityItem
	start   int
	count   int
	lastSeq uint64
}

// NewActivityLog creates a log holding at most capacity items.
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{items: make([]entities.ActivityItem, capacity)}
}

// Append records an item, assigning its sequence number, and returns the stored copy.
func (l *ActivityLog) Append(item entities.ActivityItem) entities.ActivityItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(item)
}

func (l *ActivityLog) appendLocked(item entities.ActivityItem) entities.ActivityItem {
	l.lastSeq++
	item.Seq = l.lastSeq

	capacity := len(l.items)
	if l.count == capacity {
		l.items[l.start] = item
		l.start = (l.start + 1) % capacity
	} else {
		l.items[(l.start+l.count)%capacity] = item
		l.count++
	}
	return item
}

// Query returns matching items newest first.
func (l *ActivityLog) Query(filter ActivityFilter) []entities.ActivityItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]entities.ActivityItem, 0, min(l.count, max(filter.Limit, 0)))
	for i := l.count - 1; i >= 0; i-- {
		item := &l.items[(l.start+i)%len(l.items)]
		if !filter.matches(item) {
			continue
		}
		result = append(result, *item)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result
}

// Items returns every retained item oldest first.
func (l *ActivityLog) Items() []entities.ActivityItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]entities.ActivityItem, l.count)
	for i := 0; i < l.count; i++ {
		result[i] = l.items[(l.start+i)%len(l.items)]
	}
	return result
}

// Len returns the number of retained items.
func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Cap returns the capacity of the log.
func (l *ActivityLog) Cap() int {
	return len(l.items)
}

// Restore replaces the log contents with items given oldest first, keeping
// their sequence numbers. Only the most recent Cap() items are kept.
func (l *ActivityLog) Restore(items []entities.ActivityItem) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(items) > len(l.items) {
		items = items[len(items)-len(l.items):]
	}
	l.start = 0
	l.count = copy(l.items, items)
	l.lastSeq = 0
	for i := range items {
		l.lastSeq = max(l.lastSeq, items[i].Seq)
	}
}

// Merge adds items from another log, given oldest first, placing them by
// timestamp among the retained ones. Every retained item is renumbered
// after the last sequence number so Seq order and timestamp order agree.
// Only the most recent Cap() items are kept.
func (l *ActivityLog) Merge(items []entities.ActivityItem) {
	if len(items) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make([]entities.ActivityItem, 0, l.count+len(items))
	for i := 0; i < l.count; i++ {
		merged = append(merged, l.items[(l.start+i)%len(l.items)])
	}
	merged = append(merged, items...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	if len(merged) > len(l.items) {
		merged = merged[len(merged)-len(l.items):]
	}

	l.start = 0
	l.count = copy(l.items, merged)
	for i := 0; i < l.count; i++ {
		l.lastSeq++
		l.items[i].Seq = l.lastSeq
	}
}
