package notify

import "sort"

// GroupStore holds every live Group in the total order spec §4.6 defines:
// (last_notification_date DESC, group_id DESC). No ordered-map/B-tree
// library in the retrieval pack is ever actually exercised (google/btree
// appears only as an unused indirect dependency elsewhere), so the order is
// maintained with a plain sorted slice plus an id index, placed via
// sort.Search — the same binary-search idiom queue.go's schedule parsing
// already uses in this codebase — and removed by a linear scan.
type GroupStore struct {
	order []*Group                       // sorted per the spec's total order, index 0 = most recent
	byID  map[NotificationGroupId]*Group // O(1) lookup by id
	byKey map[DialogId]*Group            // O(1) lookup of the live group for a dialog
}

// NewGroupStore returns an empty store.
func NewGroupStore() *GroupStore {
	return &GroupStore{
		byID:  make(map[NotificationGroupId]*Group),
		byKey: make(map[DialogId]*Group),
	}
}

// groupSortKey is the comparable form of the store's total order: a
// group's (last_notification_date, id) pair, usable without holding a
// pointer to the live Group — the flush engine computes a candidate key
// before deciding whether the group belongs in the visible window at all
// (spec §4.6's get_last_visible_key()).
type groupSortKey struct {
	date float64
	id   NotificationGroupId
}

// lessKey reports whether a sorts strictly before b: newer
// last_notification_date first, ties broken by higher group id first.
func lessKey(a, b groupSortKey) bool {
	if a.date != b.date {
		return a.date > b.date
	}
	return a.id > b.id
}

// less implements the store's total order over live Groups.
func less(a, b *Group) bool {
	return lessKey(
		groupSortKey{date: a.LastNotificationDate, id: a.ID},
		groupSortKey{date: b.LastNotificationDate, id: b.ID},
	)
}

// ByID looks up a group by id.
func (s *GroupStore) ByID(id NotificationGroupId) (*Group, bool) {
	g, ok := s.byID[id]
	return g, ok
}

// ByDialog looks up the live group for a dialog, if one exists.
func (s *GroupStore) ByDialog(dialog DialogId) (*Group, bool) {
	g, ok := s.byKey[dialog]
	return g, ok
}

// Upsert inserts g if new, or repositions it if its sort key changed.
// Callers must mutate g's fields (LastNotificationDate in particular)
// before calling Upsert so the reinsertion sees the final values.
func (s *GroupStore) Upsert(g *Group) {
	if existing, ok := s.byID[g.ID]; ok && existing == g {
		s.removeFromOrder(g)
	}
	s.byID[g.ID] = g
	s.byKey[g.Key.Dialog] = g
	s.insertSorted(g)
}

// Remove drops a group entirely.
func (s *GroupStore) Remove(id NotificationGroupId) {
	g, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if s.byKey[g.Key.Dialog] == g {
		delete(s.byKey, g.Key.Dialog)
	}
	s.removeFromOrder(g)
}

// Len returns the number of live groups.
func (s *GroupStore) Len() int { return len(s.order) }

// Ordered returns the groups in the store's total order (most recent
// first). The returned slice is a copy; mutating it does not affect the
// store.
func (s *GroupStore) Ordered() []*Group {
	out := make([]*Group, len(s.order))
	copy(out, s.order)
	return out
}

// Visible returns the groups within the visible-group-count window (the
// first n of the order), and separately the rest (still tracked, but
// collapsed to counts only per spec §4.6).
func (s *GroupStore) Visible(maxVisibleGroups int) (visible, rest []*Group) {
	if maxVisibleGroups <= 0 || maxVisibleGroups >= len(s.order) {
		return s.Ordered(), nil
	}
	visible = make([]*Group, maxVisibleGroups)
	copy(visible, s.order[:maxVisibleGroups])
	rest = make([]*Group, len(s.order)-maxVisibleGroups)
	copy(rest, s.order[maxVisibleGroups:])
	return visible, rest
}

// PositionIfVisible reports g's current 0-based rank within the visible
// window, or ok=false if it currently falls outside it.
func (s *GroupStore) PositionIfVisible(id NotificationGroupId, maxVisibleGroups int) (int, bool) {
	for i, g := range s.order {
		if g.ID != id {
			continue
		}
		if maxVisibleGroups <= 0 || i < maxVisibleGroups {
			return i, true
		}
		return 0, false
	}
	return 0, false
}

// BoundaryKey returns the sort key of the group currently occupying the
// last slot of the visible window (0-based index maxVisible-1), and true
// if the window is full. A candidate key K belongs in the visible window
// once this group is (re)inserted iff the window isn't yet full, or K
// sorts at or before this boundary (spec §4.6's get_last_visible_key(),
// used by the flush engine to decide the becoming-visible/not-visible
// split in spec §4.5 step 3).
func (s *GroupStore) BoundaryKey(maxVisible int) (groupSortKey, bool) {
	if maxVisible <= 0 || maxVisible > len(s.order) {
		return groupSortKey{}, false
	}
	b := s.order[maxVisible-1]
	return groupSortKey{date: b.LastNotificationDate, id: b.ID}, true
}

func (s *GroupStore) insertSorted(g *Group) {
	idx := sort.Search(len(s.order), func(i int) bool { return less(g, s.order[i]) })
	s.order = append(s.order, nil)
	copy(s.order[idx+1:], s.order[idx:])
	s.order[idx] = g
}

func (s *GroupStore) removeFromOrder(g *Group) {
	for i, cand := range s.order {
		if cand == g {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
