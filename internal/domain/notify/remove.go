package notify

// RemoveNotification drops a single notification, wherever it currently
// lives (still pending, or already merged into its group's visible
// suffix or counted-only tail). Removing a pending item is a pure no-op
// from the UI's perspective — it was never shown. Removing a merged item
// decrements TotalCount only when it was part of the visible suffix, and
// — only then — emits an incremental removal diff for that one id (spec
// §4.9, decided fully in SPEC_FULL.md since the source spec left this
// path as an outline). A bot session makes this call a silent no-op,
// same as every other mutating operation (spec §7).
func (m *Manager) RemoveNotification(groupID NotificationGroupId, notifID NotificationId) error {
	if notifID <= 0 {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auth != nil && m.auth.IsBot() {
		return nil
	}

	if pend, ok := m.pending[groupID]; ok {
		for i, n := range pend {
			if n.ID == notifID {
				m.pending[groupID] = append(pend[:i], pend[i+1:]...)
				return nil
			}
		}
	}

	group, ok := m.groups.ByID(groupID)
	if !ok {
		return ErrUnknownGroup
	}

	cfg := m.cfg.Snapshot()
	before := visibleIDs(group, cfg.MaxGroupSize)

	removedIdx := -1
	for i, n := range group.Notifications {
		if n.ID == notifID {
			removedIdx = i
			break
		}
	}
	if removedIdx == -1 {
		return ErrUnknownNotification
	}
	wasVisible := removedIdx >= len(group.Notifications)-len(before)

	group.Notifications = append(group.Notifications[:removedIdx], group.Notifications[removedIdx+1:]...)
	if wasVisible {
		group.TotalCount--
	}

	m.finishRemovalLocked(group, wasVisible, []NotificationId{notifID})
	return nil
}

// RemoveNotificationGroup removes every notification in groupID with id
// <= maxNotifID, both pending and merged, as one batched operation. The
// source spec's distillation left remove_notification_group as a promise
// with no body; this implementation treats it as RemoveNotification
// applied to every matching id, differing only in emitting a single diff
// at the end instead of one per item.
func (m *Manager) RemoveNotificationGroup(groupID NotificationGroupId, maxNotifID NotificationId) error {
	if maxNotifID <= 0 {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auth != nil && m.auth.IsBot() {
		return nil
	}

	if pend, ok := m.pending[groupID]; ok {
		kept := pend[:0]
		for _, n := range pend {
			if n.ID > maxNotifID {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			delete(m.pending, groupID)
		} else {
			m.pending[groupID] = kept
		}
	}

	group, ok := m.groups.ByID(groupID)
	if !ok {
		return ErrUnknownGroup
	}

	cfg := m.cfg.Snapshot()
	before := visibleIDs(group, cfg.MaxGroupSize)
	visibleStart := len(group.Notifications) - len(before)

	var removedIDs []NotificationId
	kept := group.Notifications[:0]
	removedVisible := 0
	for i, n := range group.Notifications {
		if n.ID <= maxNotifID {
			if i >= visibleStart {
				removedIDs = append(removedIDs, n.ID)
				removedVisible++
			}
			continue
		}
		kept = append(kept, n)
	}
	group.Notifications = kept
	group.TotalCount -= removedVisible

	m.finishRemovalLocked(group, removedVisible > 0, removedIDs)
	return nil
}

// finishRemovalLocked either drops group entirely (once it carries no
// notifications, visible or pending, and nothing is scheduled for it) or
// emits the precise incremental removal diff for whatever of removedIDs
// was actually visible. anyVisible gates whether an update is sent at
// all: removing something that was never shown is invisible to the UI.
func (m *Manager) finishRemovalLocked(group *Group, anyVisible bool, removedIDs []NotificationId) {
	_, hasPending := m.pending[group.ID]
	if len(group.Notifications) == 0 && group.TotalCount <= 0 && !hasPending {
		m.groups.Remove(group.ID)
		m.scheduler.Cancel(group.ID)
		if anyVisible {
			m.sink.Deliver(GroupRemoved{GroupID: group.ID, RemovedNotificationIDs: removedIDs})
		}
		return
	}
	if !anyVisible {
		return
	}
	cfg := m.cfg.Snapshot()
	pos, ok := m.groups.PositionIfVisible(group.ID, cfg.MaxVisibleGroups)
	if !ok {
		m.sink.Deliver(GroupRemoved{GroupID: group.ID, RemovedNotificationIDs: removedIDs})
		return
	}
	m.sink.Deliver(GroupUpdate{
		GroupID:                group.ID,
		DialogID:               group.Key.Dialog,
		SettingsDialogID:       group.SettingsDialogID,
		RemovedNotificationIDs: removedIDs,
		TotalCount:             group.TotalCount,
		Position:               pos,
		Silent:                 group.Silent,
	})
}
