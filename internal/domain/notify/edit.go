package notify

// EditNotification updates the rendered content of an existing
// notification in place (spec §4.8): a front-to-back scan that checks
// both the still-pending FIFO and the group's already-merged
// notifications, replacing in whichever it finds first. If the edited
// item is within the group's visible suffix, a SingleUpdate is emitted so
// the sink can patch just that one item without resending the whole
// group; if the new content fails to render, no update is emitted, so the
// sink keeps showing the previously rendered content. No error is returned when
// notifID is not found anywhere — per spec §4.8 an edit racing a removal
// or an already-evicted item is not a caller mistake.
func (m *Manager) EditNotification(groupID NotificationGroupId, notifID NotificationId, newType NotificationType) error {
	if notifID <= 0 {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auth != nil && m.auth.IsBot() {
		return nil
	}

	for i, p := range m.pending[groupID] {
		if p.ID == notifID {
			m.pending[groupID][i].Type = newType
			return nil
		}
	}

	group, ok := m.groups.ByID(groupID)
	if !ok {
		return nil
	}

	cfg := m.cfg.Snapshot()
	visible := group.VisibleNotifications(cfg.MaxGroupSize)
	visibleStart := len(group.Notifications) - len(visible)

	for i, n := range group.Notifications {
		if n.ID != notifID {
			continue
		}
		group.Notifications[i].Type = newType

		if i < visibleStart {
			return nil
		}
		content, ok := newType.Render(group.Key.Dialog)
		if !ok {
			return nil
		}
		pos, _ := m.groups.PositionIfVisible(groupID, cfg.MaxVisibleGroups)
		m.sink.Deliver(SingleUpdate{
			GroupID:        groupID,
			NotificationID: notifID,
			Notification:   RenderedNotification{ID: notifID, Content: content},
			Position:       pos,
		})
		return nil
	}

	return nil
}
