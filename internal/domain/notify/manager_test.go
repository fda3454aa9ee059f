package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNotification_ImmediateFlushWhenUndelayable(t *testing.T) {
	m, _, _, sink := newTestManager(defaultTestConfig(), nil)

	id, err := m.AddNotification(NotificationInput{
		Dialog: userDialog(1),
		Type:   CallNotification{},
	})
	require.NoError(t, err)
	assert.Equal(t, NotificationId(1), id)

	updates := sink.All()
	require.Len(t, updates, 1)
	gu, ok := updates[0].(GroupUpdate)
	require.True(t, ok)
	assert.Equal(t, 0, gu.Position)
	assert.Equal(t, 1, gu.TotalCount)
	require.Len(t, gu.Notifications, 1)
	assert.Equal(t, id, gu.Notifications[0].ID)
}

func TestAddNotification_DelayedNotificationWaitsForTimer(t *testing.T) {
	cfg := defaultTestConfig()
	cfg[ConfigKeyNotificationCloudMs] = 5000
	m, clock, wheel, sink := newTestManager(cfg, &fakePresence{})

	_, err := m.AddNotification(NotificationInput{
		Dialog: userDialog(1),
		Type:   MessageNotification{Text: "hi"},
	})
	require.NoError(t, err)

	assert.Empty(t, sink.All(), "nothing should be delivered before the delay elapses")

	at, ok := wheel.At(1)
	require.True(t, ok)
	assert.Equal(t, clock.ServerTime()+5, at)

	clock.Advance(5)
	m.OnTimerFired(1)

	updates := sink.All()
	require.Len(t, updates, 1)
	gu := updates[0].(GroupUpdate)
	assert.Equal(t, 1, gu.TotalCount)
}

func TestPendingScheduler_EarliestFlushWins(t *testing.T) {
	cfg := defaultTestConfig()
	cfg[ConfigKeyNotificationCloudMs] = 10000
	m, clock, wheel, sink := newTestManager(cfg, &fakePresence{})

	_, err := m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: MessageNotification{Text: "a"}})
	require.NoError(t, err)
	firstAt, _ := wheel.At(1)

	clock.Advance(1)
	_, err = m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: MessageNotification{Text: "b"}})
	require.NoError(t, err)

	secondAt, ok := wheel.At(1)
	require.True(t, ok)
	assert.Equal(t, firstAt, secondAt, "a later add must never postpone the group's already-scheduled flush")

	clock.Advance(9) // now == firstAt
	m.OnTimerFired(1)

	updates := sink.All()
	require.Len(t, updates, 1)
	gu := updates[0].(GroupUpdate)
	assert.Equal(t, 2, gu.TotalCount, "a single timer fire flushes the entire pending FIFO, not just whichever item was individually due")

	_, stillScheduled := wheel.At(1)
	assert.False(t, stillScheduled, "nothing should be left pending after the batch flush")
}

func TestFlush_VisibleGroupCountEviction(t *testing.T) {
	cfg := defaultTestConfig()
	cfg[ConfigKeyMaxVisibleGroups] = 2
	m, _, _, sink := newTestManager(cfg, nil)

	for i := int64(1); i <= 3; i++ {
		_, err := m.AddNotification(NotificationInput{Dialog: userDialog(i), Type: CallNotification{}})
		require.NoError(t, err)
	}

	updates := sink.All()
	var removed []GroupRemoved
	for _, u := range updates {
		if r, ok := u.(GroupRemoved); ok {
			removed = append(removed, r)
		}
	}
	require.Len(t, removed, 1, "the third distinct dialog should push the oldest group out of the visible window")
	assert.Equal(t, NotificationGroupId(1), removed[0].GroupID)
}

func TestFlush_PerGroupSizeBound(t *testing.T) {
	cfg := defaultTestConfig()
	cfg[ConfigKeyMaxGroupSize] = 2
	m, _, _, sink := newTestManager(cfg, nil)

	dialog := userDialog(1)
	var ids []NotificationId
	for i := 0; i < 4; i++ {
		id, err := m.AddNotification(NotificationInput{Dialog: dialog, Type: CallNotification{}})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	group, ok := m.groups.ByDialog(dialog)
	require.True(t, ok)
	assert.Equal(t, 4, group.TotalCount, "total count tracks every notification ever merged")
	visible := group.VisibleNotifications(2)
	require.Len(t, visible, 2, "only the last max_group_size items are visible")
	assert.Equal(t, ids[2], visible[0].ID)
	assert.Equal(t, ids[3], visible[1].ID)

	updates := sink.All()
	last := updates[len(updates)-1].(GroupUpdate)
	assert.Equal(t, 4, last.TotalCount)
	require.Len(t, last.Notifications, 1, "the diff only carries what's newly visible")
	assert.Equal(t, ids[3], last.Notifications[0].ID)
	require.Len(t, last.RemovedNotificationIDs, 1, "the diff also carries what scrolled out of the visible suffix")
	assert.Equal(t, ids[1], last.RemovedNotificationIDs[0])
}

func TestEditNotification_UpdatesVisibleItem(t *testing.T) {
	m, clock, _, sink := newTestManager(defaultTestConfig(), nil)

	id, err := m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: MessageNotification{Text: "old"}})
	require.NoError(t, err)

	group, ok := m.groups.ByDialog(userDialog(1))
	require.True(t, ok)

	// Even an unconfigured delay never flushes at exactly zero (the delay
	// policy's floor), so the group needs its timer fired before the item
	// is visible to edit.
	clock.Advance(1)
	m.OnTimerFired(group.ID)

	err = m.EditNotification(group.ID, id, MessageNotification{Text: "new"})
	require.NoError(t, err)

	updates := sink.All()
	last := updates[len(updates)-1].(SingleUpdate)
	assert.Equal(t, id, last.NotificationID)
	assert.Equal(t, "new", last.Notification.Content)
}

func TestEditNotification_UnknownIDIsNotAnError(t *testing.T) {
	m, _, _, _ := newTestManager(defaultTestConfig(), nil)
	id, err := m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: MessageNotification{Text: "x"}})
	require.NoError(t, err)
	group, _ := m.groups.ByDialog(userDialog(1))

	err = m.EditNotification(group.ID, id+1, MessageNotification{Text: "y"})
	require.NoError(t, err, "an edit that matches nothing is not a caller mistake")
}

func TestAddNotification_BotSessionIsSilentNoOp(t *testing.T) {
	m, _, _, sink := newTestManagerWithAuth(defaultTestConfig(), nil, &fakeAuthSession{bot: true})

	id, err := m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: CallNotification{}})
	require.NoError(t, err)
	assert.Equal(t, NotificationId(0), id)
	assert.Empty(t, sink.All())
	_, ok := m.groups.ByDialog(userDialog(1))
	assert.False(t, ok, "a bot session must never allocate a group")
}

func TestRemoveNotification_PendingItemIsSilentNoOp(t *testing.T) {
	cfg := defaultTestConfig()
	cfg[ConfigKeyNotificationCloudMs] = 5000
	m, _, _, sink := newTestManager(cfg, &fakePresence{})

	id, err := m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: MessageNotification{Text: "x"}})
	require.NoError(t, err)
	group, _ := m.groups.ByDialog(userDialog(1))

	err = m.RemoveNotification(group.ID, id)
	require.NoError(t, err)
	assert.Empty(t, sink.All(), "removing a still-pending notification must not emit anything")
}

func TestRemoveNotification_VisibleItemDecrementsAndDrainsGroup(t *testing.T) {
	m, _, _, sink := newTestManager(defaultTestConfig(), nil)

	id, err := m.AddNotification(NotificationInput{Dialog: userDialog(1), Type: CallNotification{}})
	require.NoError(t, err)
	group, _ := m.groups.ByDialog(userDialog(1))

	err = m.RemoveNotification(group.ID, id)
	require.NoError(t, err)

	updates := sink.All()
	last := updates[len(updates)-1]
	removed, ok := last.(GroupRemoved)
	require.True(t, ok, "draining a group's only notification should remove it entirely")
	assert.Equal(t, group.ID, removed.GroupID)

	_, stillThere := m.groups.ByID(group.ID)
	assert.False(t, stillThere)
}

func TestRemoveNotificationGroup_BatchRemovesUpToMaxID(t *testing.T) {
	m, _, _, sink := newTestManager(defaultTestConfig(), nil)

	dialog := userDialog(1)
	var ids []NotificationId
	for i := 0; i < 3; i++ {
		id, err := m.AddNotification(NotificationInput{Dialog: dialog, Type: CallNotification{}})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	group, _ := m.groups.ByDialog(dialog)

	// The default test config caps group size at 2, so by the time all three
	// immediate-flush notifications have merged, ids[0] has already scrolled
	// out of the visible suffix and only ids[1]/ids[2] remain visible.
	err := m.RemoveNotificationGroup(group.ID, ids[1])
	require.NoError(t, err)

	updates := sink.All()
	last := updates[len(updates)-1].(GroupUpdate)
	assert.Equal(t, 2, last.TotalCount, "ids[0] was already trimmed from the visible suffix before this removal")
	assert.ElementsMatch(t, []NotificationId{ids[1]}, last.RemovedNotificationIDs)
	assert.Empty(t, last.Notifications, "a removal never introduces newly-added items")

	visible := group.VisibleNotifications(2)
	require.Len(t, visible, 1)
	assert.Equal(t, ids[2], visible[0].ID)
}

func TestRemoveNotificationGroup_InvalidIDRejected(t *testing.T) {
	m, _, _, _ := newTestManager(defaultTestConfig(), nil)
	err := m.RemoveNotificationGroup(1, 0)
	assert.ErrorIs(t, err, ErrInvalidID)
}
