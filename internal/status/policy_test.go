package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DueBell/internal/model"
	pkgerrors "DueBell/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestShouldDispatchNoStatus(t *testing.T) {
	assert.True(t, ShouldDispatch(nil, model.EventClassAdvance, day(2025, 12, 1)))
	assert.True(t, ShouldDispatch(nil, model.EventClassDue, day(2025, 12, 1)))
	assert.True(t, ShouldDispatch(nil, model.EventClassOverdue, day(2025, 12, 1)))
}

func TestShouldDispatchAdvanceAndDueSuppressedForever(t *testing.T) {
	st := &model.ReminderStatus{
		RecordID:     "rec-1",
		ThresholdKey: 7,
		Class:        model.EventClassAdvance,
		DeliveredAt:  day(2025, 11, 24),
	}

	// 交付当天和之后的任何一天都不再重发
	assert.False(t, ShouldDispatch(st, model.EventClassAdvance, day(2025, 11, 24)))
	assert.False(t, ShouldDispatch(st, model.EventClassAdvance, day(2025, 11, 25)))
	assert.False(t, ShouldDispatch(st, model.EventClassDue, day(2026, 1, 1)))
}

func TestShouldDispatchOverdueResendsAcrossDays(t *testing.T) {
	st := &model.ReminderStatus{
		RecordID:     "rec-1",
		ThresholdKey: model.OverdueThresholdKey,
		Class:        model.EventClassOverdue,
		DeliveredAt:  day(2025, 12, 2),
	}

	// 同一天内不重发，跨天允许重发
	assert.False(t, ShouldDispatch(st, model.EventClassOverdue, day(2025, 12, 2)))
	assert.True(t, ShouldDispatch(st, model.EventClassOverdue, day(2025, 12, 3)))
}

func TestShouldDispatchHandledOverdueSuppressed(t *testing.T) {
	handledAt := day(2025, 12, 2)
	st := &model.ReminderStatus{
		RecordID:     "rec-1",
		ThresholdKey: model.OverdueThresholdKey,
		Class:        model.EventClassOverdue,
		DeliveredAt:  day(2025, 12, 2),
		Handled:      true,
		HandledAt:    &handledAt,
	}

	assert.False(t, ShouldDispatch(st, model.EventClassOverdue, day(2025, 12, 3)))
	assert.False(t, ShouldDispatch(st, model.EventClassOverdue, day(2026, 6, 1)))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: 7, Class: model.EventClassAdvance}

	st, err := store.GetStatus(ctx, "rec-1", 7)
	require.NoError(t, err)
	assert.Nil(t, st)

	deliveredAt := day(2025, 11, 24)
	require.NoError(t, store.RecordSent(ctx, event, deliveredAt, map[string]string{
		"telegram": "sent",
		"email":    "failed: smtp timeout",
	}))

	st, err = store.GetStatus(ctx, "rec-1", 7)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, model.EventClassAdvance, st.Class)
	assert.Equal(t, deliveredAt, st.DeliveredAt)
	assert.Equal(t, "sent", st.ChannelOutcomes["telegram"])
	assert.False(t, st.Handled)
}

func TestMemoryStoreMarkHandled(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.MarkHandled(ctx, "rec-1", model.OverdueThresholdKey, day(2025, 12, 2))
	assert.ErrorIs(t, err, pkgerrors.ReminderNotFound)

	event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: model.OverdueThresholdKey, Class: model.EventClassOverdue}
	require.NoError(t, store.RecordSent(ctx, event, day(2025, 12, 2), map[string]string{"telegram": "sent"}))

	handledAt := day(2025, 12, 2)
	st, err := store.MarkHandled(ctx, "rec-1", model.OverdueThresholdKey, handledAt)
	require.NoError(t, err)
	assert.True(t, st.Handled)
	require.NotNil(t, st.HandledAt)
	assert.Equal(t, handledAt, *st.HandledAt)

	// 幂等：重复标记不改写首次 handled 时间
	later := day(2025, 12, 5)
	st, err = store.MarkHandled(ctx, "rec-1", model.OverdueThresholdKey, later)
	require.NoError(t, err)
	assert.True(t, st.Handled)
	assert.Equal(t, handledAt, *st.HandledAt)
}

func TestMemoryStoreOverdueResendKeepsHandledFlag(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: model.OverdueThresholdKey, Class: model.EventClassOverdue}
	require.NoError(t, store.RecordSent(ctx, event, day(2025, 12, 2), map[string]string{"telegram": "sent"}))

	_, err := store.MarkHandled(ctx, "rec-1", model.OverdueThresholdKey, day(2025, 12, 2))
	require.NoError(t, err)

	// 上游竞态下重复 RecordSent 不应清掉 handled 标记
	require.NoError(t, store.RecordSent(ctx, event, day(2025, 12, 3), map[string]string{"telegram": "sent"}))

	st, err := store.GetStatus(ctx, "rec-1", model.OverdueThresholdKey)
	require.NoError(t, err)
	assert.True(t, st.Handled)
}

func TestMemoryStoreListByRecord(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, key := range []int{30, model.OverdueThresholdKey, 0} {
		event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: key, Class: model.EventClassAdvance}
		require.NoError(t, store.RecordSent(ctx, event, day(2025, 12, 1), map[string]string{"email": "sent"}))
	}
	other := model.ReminderEvent{RecordID: "rec-2", ThresholdKey: 7, Class: model.EventClassAdvance}
	require.NoError(t, store.RecordSent(ctx, other, day(2025, 12, 1), map[string]string{"email": "sent"}))

	rows, err := store.ListByRecord(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{model.OverdueThresholdKey, 0, 30}, []int{rows[0].ThresholdKey, rows[1].ThresholdKey, rows[2].ThresholdKey})
}
