package notify

import "go.uber.org/zap"

// flushGroupLocked folds every pending notification for groupID into the
// group in one batch, repositions the group in the store, and emits the
// minimal set of diff updates needed to bring the UI's visible window up
// to date (spec §4.5/§4.6). A flush always clears the group's entire
// pending FIFO — there is no partial, per-item flush. Callers must hold
// m.mu.
func (m *Manager) flushGroupLocked(groupID NotificationGroupId) {
	m.scheduler.Cancel(groupID)

	group, ok := m.groups.ByID(groupID)
	if !ok {
		delete(m.pending, groupID)
		return
	}

	items := m.pending[groupID]
	delete(m.pending, groupID)
	if len(items) == 0 {
		return
	}

	cfg := m.cfg.Snapshot()

	// Step 1: remove the group from the store so the boundary computed
	// below reflects every other group's current position.
	_, wasVisible := m.groups.PositionIfVisible(groupID, cfg.MaxVisibleGroups)
	m.groups.Remove(groupID)

	// Step 2: compute the group's new sort key from the latest item.
	newDate := group.LastNotificationDate
	for _, n := range items {
		if n.CreatedAt > newDate {
			newDate = n.CreatedAt
		}
	}
	newKey := groupSortKey{date: newDate, id: group.ID}

	// Step 3: compute the visibility boundary with this group removed.
	boundary, hasBoundary := m.groups.BoundaryKey(cfg.MaxVisibleGroups)
	becomesVisible := !hasBoundary || !lessKey(boundary, newKey)

	// If this group takes a slot in an already-full window (it was outside
	// the window before this flush), whichever group previously sat at the
	// boundary is pushed out — it stays tracked in the store (spec §4.6's
	// counts-only "rest"), but the sink needs telling its visible content
	// is gone.
	var displaced *Group
	if becomesVisible && hasBoundary && !wasVisible {
		displaced, _ = m.groups.ByID(boundary.id)
	}

	if !becomesVisible {
		// Step 4: not-visible path. Every item still counts toward
		// total_count and the stored history, but nothing is shown, so
		// nothing is rendered or sent. A group already visible before
		// this flush cannot become invisible purely by gaining
		// notifications (its key only gets more recent), so this path
		// only reaches groups that were already off-screen.
		for _, n := range items {
			group.Notifications = append(group.Notifications, n)
			group.TotalCount++
			group.SettingsDialogID = n.SettingsDialogID
			group.Silent = n.Silent
		}
		group.LastNotificationDate = newDate
		trimAndReinsertLocked(m.groups, group, cfg)
		return
	}

	// Step 6: partition the batch into maximal contiguous runs sharing
	// (settings_dialog_id, is_silent), fold each run into the group, and
	// emit one GroupUpdate per run carrying just that run's visible
	// add/remove diff (spec §4.5 step 6, scenario 4).
	type runUpdate struct {
		added    []RenderedNotification
		removed  []NotificationId
		settings DialogId
		silent   bool
	}
	var updates []runUpdate

	for _, run := range partitionRuns(items) {
		before := visibleIDs(group, cfg.MaxGroupSize)

		for _, n := range run {
			group.Notifications = append(group.Notifications, n)
			group.TotalCount++
			group.SettingsDialogID = n.SettingsDialogID
			group.Silent = n.Silent
		}

		after := visibleIDs(group, cfg.MaxGroupSize)
		added, removed := diffIDs(before, after)

		updates = append(updates, runUpdate{
			added:    renderByID(group, added),
			removed:  removed,
			settings: run[len(run)-1].SettingsDialogID,
			silent:   run[len(run)-1].Silent,
		})
	}
	group.LastNotificationDate = newDate

	// Step 8: batch-trim only once the history crosses keep_size+
	// EXTRA_GROUP_SIZE, back down to keep_size (spec §4.5 step 8, I4).
	// Step 9: reinsert the group at its new position before computing the
	// position each emitted update carries.
	trimAndReinsertLocked(m.groups, group, cfg)
	pos, _ := m.groups.PositionIfVisible(group.ID, cfg.MaxVisibleGroups)

	for _, u := range updates {
		m.sink.Deliver(GroupUpdate{
			GroupID:                group.ID,
			DialogID:               group.Key.Dialog,
			SettingsDialogID:       u.settings,
			Notifications:          u.added,
			RemovedNotificationIDs: u.removed,
			TotalCount:             group.TotalCount,
			Position:               pos,
			Silent:                 u.silent,
		})
	}

	if displaced != nil {
		m.sink.Deliver(GroupRemoved{
			GroupID:                displaced.ID,
			RemovedNotificationIDs: visibleIDs(displaced, cfg.MaxGroupSize),
		})
	}

	if m.log != nil {
		m.log.Debug("group flushed",
			zap.Int32("group_id", int32(groupID)),
			zap.Int("merged", len(items)),
			zap.Int("runs", len(updates)),
		)
	}
}

// partitionRuns splits items into maximal contiguous runs sharing the
// same (SettingsDialogID, Silent) pair, preserving arrival order both
// across and within runs (spec §4.5 step 6).
func partitionRuns(items []Notification) [][]Notification {
	if len(items) == 0 {
		return nil
	}
	var runs [][]Notification
	start := 0
	for i := 1; i <= len(items); i++ {
		if i < len(items) &&
			items[i].SettingsDialogID == items[start].SettingsDialogID &&
			items[i].Silent == items[start].Silent {
			continue
		}
		runs = append(runs, items[start:i])
		start = i
	}
	return runs
}

// visibleIDs returns the ids of the group's current visible suffix, in
// order, used to diff a run's effect on what the UI can see.
func visibleIDs(group *Group, maxVisible int) []NotificationId {
	visible := group.VisibleNotifications(maxVisible)
	ids := make([]NotificationId, len(visible))
	for i, n := range visible {
		ids[i] = n.ID
	}
	return ids
}

// diffIDs computes which ids are newly present and newly absent between
// two visible-suffix snapshots, preserving the order they appear in after
// (for added) and before (for removed).
func diffIDs(before, after []NotificationId) (added, removed []NotificationId) {
	beforeSet := make(map[NotificationId]bool, len(before))
	for _, id := range before {
		beforeSet[id] = true
	}
	afterSet := make(map[NotificationId]bool, len(after))
	for _, id := range after {
		afterSet[id] = true
	}
	for _, id := range after {
		if !beforeSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if !afterSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// renderByID renders the group's notifications matching ids, in
// group.Notifications order, dropping any whose NotificationType.Render
// reports it is unrenderable — it was already counted in TotalCount when
// added, so dropping it here only affects what the sink is shown (spec
// §4.6/P4).
func renderByID(group *Group, ids []NotificationId) []RenderedNotification {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[NotificationId]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []RenderedNotification
	for _, n := range group.Notifications {
		if !want[n.ID] {
			continue
		}
		content, ok := n.Type.Render(group.Key.Dialog)
		if !ok {
			continue
		}
		out = append(out, RenderedNotification{ID: n.ID, Content: content})
	}
	return out
}

// trimAndReinsertLocked batch-trims a group's notification history back
// to keep_size once it has grown past keep_size+EXTRA_GROUP_SIZE (spec
// §4.5 step 8, invariant I4), then reinserts the group into the store at
// its current sort key (spec §4.5 step 9).
func trimAndReinsertLocked(store *GroupStore, group *Group, cfg Config) {
	if len(group.Notifications) > cfg.KeepSize+extraGroupSize {
		group.Notifications = append([]Notification(nil),
			group.Notifications[len(group.Notifications)-cfg.KeepSize:]...)
	}
	store.Upsert(group)
}
