package notify

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"DueBell/internal/model"
	"DueBell/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// stubChannel 可控的测试渠道
type stubChannel struct {
	name string
	err  error
	sent []Message
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func dispatchEvent() (model.ReminderEvent, model.DeadlineRecord, time.Time) {
	event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: 0, Class: model.EventClassDue}
	rec := model.DeadlineRecord{
		RecordID:    "rec-1",
		Description: "Car insurance premium",
		DueDate:     time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	return event, rec, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
}

func TestDispatchAllChannelsSucceed(t *testing.T) {
	tg := &stubChannel{name: "telegram"}
	email := &stubChannel{name: "email"}
	d := NewDispatcher(tg, email)

	event, rec, today := dispatchEvent()
	outcomes, anySent := d.Dispatch(context.Background(), event, rec, today)

	assert.True(t, anySent)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes["telegram"].Sent)
	assert.True(t, outcomes["email"].Sent)
	require.Len(t, tg.sent, 1)
	require.Len(t, email.sent, 1)
	assert.Equal(t, tg.sent[0].Subject, email.sent[0].Subject)
}

func TestDispatchPartialFailureStillCountsAsSent(t *testing.T) {
	tg := &stubChannel{name: "telegram"}
	email := &stubChannel{name: "email", err: errors.New("smtp timeout")}
	d := NewDispatcher(tg, email)

	event, rec, today := dispatchEvent()
	outcomes, anySent := d.Dispatch(context.Background(), event, rec, today)

	assert.True(t, anySent)
	assert.True(t, outcomes["telegram"].Sent)
	assert.False(t, outcomes["email"].Sent)
	assert.Equal(t, "smtp timeout", outcomes["email"].Reason)
}

func TestDispatchTotalFailure(t *testing.T) {
	tg := &stubChannel{name: "telegram", err: errors.New("api unreachable")}
	email := &stubChannel{name: "email", err: errors.New("smtp timeout")}
	d := NewDispatcher(tg, email)

	event, rec, today := dispatchEvent()
	outcomes, anySent := d.Dispatch(context.Background(), event, rec, today)

	assert.False(t, anySent)
	assert.False(t, outcomes["telegram"].Sent)
	assert.False(t, outcomes["email"].Sent)
}

func TestOutcomeStrings(t *testing.T) {
	out := OutcomeStrings(map[string]Outcome{
		"telegram": {Sent: true},
		"email":    {Sent: false, Reason: "smtp timeout"},
	})

	assert.Equal(t, "sent", out["telegram"])
	assert.Equal(t, "failed: smtp timeout", out["email"])
}
