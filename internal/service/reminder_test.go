package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"DueBell/internal/model"
	"DueBell/internal/queue"
	"DueBell/internal/record"
	"DueBell/internal/status"
	pkgerrors "DueBell/pkg/errors"
	"DueBell/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// fakeMarks EventMarks 的进程内实现
type fakeMarks struct {
	mu    sync.Mutex
	marks map[string]bool

	FailCheck bool
}

func newFakeMarks() *fakeMarks {
	return &fakeMarks{marks: make(map[string]bool)}
}

func marksKey(date, recordID string, thresholdKey int) string {
	return fmt.Sprintf("%s/%s/%d", date, recordID, thresholdKey)
}

func (f *fakeMarks) IsPublished(ctx context.Context, date, recordID string, thresholdKey int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCheck {
		f.FailCheck = false
		return false, errors.New("mock redis failure")
	}
	return f.marks[marksKey(date, recordID, thresholdKey)], nil
}

func (f *fakeMarks) MarkPublished(ctx context.Context, date, recordID string, thresholdKey int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[marksKey(date, recordID, thresholdKey)] = true
	return nil
}

func (f *fakeMarks) UnmarkPublished(ctx context.Context, date, recordID string, thresholdKey int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.marks, marksKey(date, recordID, thresholdKey))
	return nil
}

// fakeLock RunLock 的进程内实现
type fakeLock struct {
	mu   sync.Mutex
	held map[string]bool

	// Held 预先占住某个日期的锁
	Held string
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]bool)}
}

func (f *fakeLock) Acquire(ctx context.Context, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Held == date || f.held[date] {
		return false, nil
	}
	f.held[date] = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, date)
	return nil
}

// publishRecorder 捕获发布的消息
type publishRecorder struct {
	mu       sync.Mutex
	messages []queue.DispatchMessage
	fail     bool
}

func (p *publishRecorder) publish(msg queue.DispatchMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		p.fail = false
		return errors.New("mock publish failure")
	}
	p.messages = append(p.messages, msg)
	return nil
}

type alertRecorder struct {
	mu     sync.Mutex
	alerts []string
}

func (a *alertRecorder) alert(ctx context.Context, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, text)
}

func testDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRecord(id string, due time.Time, advanceDays ...int) model.DeadlineRecord {
	return model.DeadlineRecord{
		RecordID:    id,
		Category:    "insurance",
		Description: "Car insurance premium",
		DueDate:     due,
		AdvanceDays: advanceDays,
	}
}

type runFixture struct {
	source  *record.MockSource
	store   *status.MemoryStore
	marks   *fakeMarks
	lock    *fakeLock
	pub     *publishRecorder
	alerts  *alertRecorder
	service *ReminderService
}

func newRunFixture(records ...model.DeadlineRecord) *runFixture {
	f := &runFixture{
		source: record.NewMockSource(records...),
		store:  status.NewMemoryStore(),
		marks:  newFakeMarks(),
		lock:   newFakeLock(),
		pub:    &publishRecorder{},
		alerts: &alertRecorder{},
	}
	f.service = NewReminderService(f.source, f.store, f.marks, f.lock, f.pub.publish, f.alerts.alert)
	return f
}

func TestRunPublishesDueEvents(t *testing.T) {
	today := testDay(2025, 12, 1)
	f := newRunFixture(
		testRecord("rec-due", testDay(2025, 12, 1), 30, 7, 0),
		testRecord("rec-far", testDay(2026, 6, 1), 30, 7, 0),
	)

	summary, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RecordsRead)
	assert.Equal(t, 1, summary.EventsDue)
	assert.Equal(t, 1, summary.Published)
	assert.Equal(t, 0, summary.Suppressed)
	assert.Equal(t, 0, summary.Errors)

	require.Len(t, f.pub.messages, 1)
	msg := f.pub.messages[0]
	assert.Equal(t, summary.RunID, msg.RunID)
	assert.Equal(t, "2025-12-01", msg.Date)
	assert.Equal(t, "rec-due", msg.Event.RecordID)
	assert.Equal(t, 0, msg.Event.ThresholdKey)
	assert.Equal(t, model.EventClassDue, msg.Event.Class)
	assert.Equal(t, "Car insurance premium", msg.Record.Description)
	assert.Equal(t, "2025-12-01", msg.Record.DueDate)
}

func TestRunTwiceSameDayPublishesOnce(t *testing.T) {
	today := testDay(2025, 12, 1)
	f := newRunFixture(testRecord("rec-due", today, 0))

	first, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Published)

	second, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Published)
	assert.Equal(t, 1, second.Suppressed)

	assert.Len(t, f.pub.messages, 1)
}

func TestRunSuppressedByDeliveredStatus(t *testing.T) {
	today := testDay(2025, 11, 24)
	f := newRunFixture(testRecord("rec-1", testDay(2025, 12, 1), 7))

	// 昨天已投递过同一阈值
	event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: 7, Class: model.EventClassAdvance}
	require.NoError(t, f.store.RecordSent(context.Background(), event, testDay(2025, 11, 23), map[string]string{"telegram": "sent"}))

	summary, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.EventsDue)
	assert.Equal(t, 0, summary.Published)
	assert.Equal(t, 1, summary.Suppressed)
	assert.Empty(t, f.pub.messages)
}

func TestRunOverdueRepublishedNextDay(t *testing.T) {
	f := newRunFixture(testRecord("rec-1", testDay(2025, 12, 1), 0))

	// 12-02 投了 overdue 并成功
	event := model.ReminderEvent{RecordID: "rec-1", ThresholdKey: model.OverdueThresholdKey, Class: model.EventClassOverdue}
	require.NoError(t, f.store.RecordSent(context.Background(), event, testDay(2025, 12, 2), map[string]string{"telegram": "sent"}))

	// 12-03 应当再次发布
	summary, err := f.service.Run(context.Background(), testDay(2025, 12, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)

	// 已处理之后不再发布
	_, err = f.store.MarkHandled(context.Background(), "rec-1", model.OverdueThresholdKey, testDay(2025, 12, 3))
	require.NoError(t, err)

	summary, err = f.service.Run(context.Background(), testDay(2025, 12, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Published)
	assert.Equal(t, 1, summary.Suppressed)
}

func TestRunLockHeldElsewhere(t *testing.T) {
	today := testDay(2025, 12, 1)
	f := newRunFixture(testRecord("rec-due", today, 0))
	f.lock.Held = "2025-12-01"

	_, err := f.service.Run(context.Background(), today)
	assert.ErrorIs(t, err, pkgerrors.RunAlreadyActive)
	assert.Empty(t, f.pub.messages)
}

func TestRunReadFailureAlertsOperator(t *testing.T) {
	f := newRunFixture()
	f.source.FailRead = true

	_, err := f.service.Run(context.Background(), testDay(2025, 12, 1))
	require.Error(t, err)

	require.Len(t, f.alerts.alerts, 1)
	assert.Contains(t, f.alerts.alerts[0], "cannot read deadline records")
}

func TestRunCountsMalformedRows(t *testing.T) {
	today := testDay(2025, 12, 1)
	f := newRunFixture(testRecord("rec-due", today, 0))
	f.source.RowErrs = []record.RowError{
		{Row: 2, Reason: "missing record_id"},
		{RecordID: "bad-1", Row: 5, Reason: "missing due_date"},
	}

	summary, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RowsSkipped)
	assert.Equal(t, 1, summary.Published)
}

func TestRunPublishFailureRollsBackMark(t *testing.T) {
	today := testDay(2025, 12, 1)
	f := newRunFixture(testRecord("rec-due", today, 0))
	f.pub.fail = true

	summary, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Published)
	assert.Equal(t, 1, summary.Errors)

	// 标记已回滚，重跑能再次发布
	summary, err = f.service.Run(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)
}

func TestRunReleasesLock(t *testing.T) {
	today := testDay(2025, 12, 1)
	f := newRunFixture(testRecord("rec-due", today, 0))

	_, err := f.service.Run(context.Background(), today)
	require.NoError(t, err)

	// 锁释放后同日允许再次运行（去重由投放标记兜底）
	_, err = f.service.Run(context.Background(), today)
	require.NoError(t, err)
}
