package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DueBell/internal/model"
	"DueBell/internal/record"
	"DueBell/internal/status"
	pkgerrors "DueBell/pkg/errors"
)

type actionFixture struct {
	store   *status.MemoryStore
	source  *record.MockSource
	service *ActionService
}

func newActionFixture() *actionFixture {
	f := &actionFixture{
		store:  status.NewMemoryStore(),
		source: record.NewMockSource(),
	}
	f.service = NewActionService(f.store, f.source)
	return f
}

func (f *actionFixture) seedStatus(t *testing.T, recordID string, thresholdKey int, class model.EventClass) {
	t.Helper()
	event := model.ReminderEvent{RecordID: recordID, ThresholdKey: thresholdKey, Class: class}
	require.NoError(t, f.store.RecordSent(context.Background(), event, testDay(2025, 12, 2), map[string]string{"telegram": "sent"}))
}

func TestMarkHandled(t *testing.T) {
	f := newActionFixture()
	f.seedStatus(t, "rec-1", model.OverdueThresholdKey, model.EventClassOverdue)

	st, err := f.service.MarkHandled(context.Background(), "rec-1", model.OverdueThresholdKey)
	require.NoError(t, err)
	assert.True(t, st.Handled)
	require.NotNil(t, st.HandledAt)

	// 回写记录源的状态标注
	assert.Equal(t, "Handled", f.source.Notes["rec-1"])
}

func TestMarkHandledNotFound(t *testing.T) {
	f := newActionFixture()

	_, err := f.service.MarkHandled(context.Background(), "ghost", 7)
	assert.ErrorIs(t, err, pkgerrors.ReminderNotFound)
	assert.Empty(t, f.source.Notes)
}

func TestMarkHandledNoteWriteFailureDoesNotRevert(t *testing.T) {
	f := newActionFixture()
	f.seedStatus(t, "rec-1", 0, model.EventClassDue)
	f.source.FailWrite = true

	st, err := f.service.MarkHandled(context.Background(), "rec-1", 0)
	require.NoError(t, err)
	assert.True(t, st.Handled)

	// handled 标记保留在状态存储里
	got, err := f.store.GetStatus(context.Background(), "rec-1", 0)
	require.NoError(t, err)
	assert.True(t, got.Handled)
}

func TestMarkHandledIdempotent(t *testing.T) {
	f := newActionFixture()
	f.seedStatus(t, "rec-1", 0, model.EventClassDue)

	first, err := f.service.MarkHandled(context.Background(), "rec-1", 0)
	require.NoError(t, err)

	second, err := f.service.MarkHandled(context.Background(), "rec-1", 0)
	require.NoError(t, err)
	assert.Equal(t, first.HandledAt, second.HandledAt)
}

func TestGetReminders(t *testing.T) {
	f := newActionFixture()
	f.seedStatus(t, "rec-1", 30, model.EventClassAdvance)
	f.seedStatus(t, "rec-1", 0, model.EventClassDue)

	statuses, err := f.service.GetReminders(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, 0, statuses[0].ThresholdKey)
	assert.Equal(t, 30, statuses[1].ThresholdKey)
}

func TestGetRemindersNotFound(t *testing.T) {
	f := newActionFixture()

	_, err := f.service.GetReminders(context.Background(), "ghost")
	assert.ErrorIs(t, err, pkgerrors.ReminderNotFound)
}
