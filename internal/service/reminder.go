package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"DueBell/internal/cache"
	"DueBell/internal/model"
	"DueBell/internal/queue"
	"DueBell/internal/record"
	"DueBell/internal/reminder"
	"DueBell/internal/status"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/pkg/metrics"
	"DueBell/storage/database"
	"DueBell/utils"
)

// EventMarks 当日事件投放标记（redis），防止同日重复入队
type EventMarks interface {
	IsPublished(ctx context.Context, date, recordID string, thresholdKey int) (bool, error)
	MarkPublished(ctx context.Context, date, recordID string, thresholdKey int) error
	UnmarkPublished(ctx context.Context, date, recordID string, thresholdKey int) error
}

// RunLock 单日运行锁，多实例部署时只允许一个编排器在跑
type RunLock interface {
	Acquire(ctx context.Context, date string) (bool, error)
	Release(ctx context.Context, date string) error
}

// ReminderService 每日评估编排：读记录、算事件、查状态去重、入队
type ReminderService struct {
	source  record.Source
	store   status.Store
	marks   EventMarks
	lock    RunLock
	publish func(queue.DispatchMessage) error
	alert   func(ctx context.Context, text string)
}

var (
	reminderService *ReminderService
	reminderOnce    sync.Once
)

func Reminder() *ReminderService {
	reminderOnce.Do(func() {
		reminderService = NewReminderService(
			record.NewTableSource(database.DB()),
			status.NewGormStore(database.DB()),
			cache.RedisMarks{},
			cache.RedisRunLock{},
			queue.PublishDispatch,
			operatorAlert,
		)
	})
	return reminderService
}

func NewReminderService(
	source record.Source,
	store status.Store,
	marks EventMarks,
	lock RunLock,
	publish func(queue.DispatchMessage) error,
	alert func(ctx context.Context, text string),
) *ReminderService {
	if alert == nil {
		alert = func(context.Context, string) {}
	}
	return &ReminderService{
		source:  source,
		store:   store,
		marks:   marks,
		lock:    lock,
		publish: publish,
		alert:   alert,
	}
}

// RunSummary 一次评估运行的汇总
type RunSummary struct {
	RunID       string `json:"run_id"`
	Date        string `json:"date"`
	RecordsRead int    `json:"records_read"`
	RowsSkipped int    `json:"rows_skipped"`
	EventsDue   int    `json:"events_due"`
	Published   int    `json:"published"`
	Suppressed  int    `json:"suppressed"`
	Errors      int    `json:"errors"`
}

// Run 执行一次完整的评估运行
// today 会被截断到日历日；同一日期并发调用只有一个能拿到运行锁
func (s *ReminderService) Run(ctx context.Context, today time.Time) (*RunSummary, error) {
	today = utils.DateOnly(today)
	date := utils.FormatDate(today)

	acquired, err := s.lock.Acquire(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.StateStoreUnavailable, err)
	}
	if !acquired {
		logger.Logger.Warn("Reminder run already active, skipping",
			zap.String("date", date),
		)
		return nil, errors.RunAlreadyActive
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), date); err != nil {
			logger.Logger.Warn("Failed to release run lock",
				zap.String("date", date),
				zap.Error(err),
			)
		}
	}()

	summary := &RunSummary{
		RunID: uuid.New().String(),
		Date:  date,
	}

	logger.Logger.Info("Reminder run started",
		zap.String("run_id", summary.RunID),
		zap.String("date", date),
	)

	records, rowErrs, err := s.source.ReadAll(ctx)
	if err != nil {
		logger.Logger.Error("Failed to read deadline records",
			zap.String("run_id", summary.RunID),
			zap.Error(err),
		)
		s.alert(ctx, fmt.Sprintf("Reminder run %s failed: cannot read deadline records: %v", date, err))
		return nil, fmt.Errorf("failed to read deadline records: %w", err)
	}

	summary.RecordsRead = len(records)
	summary.RowsSkipped = len(rowErrs)
	for _, rowErr := range rowErrs {
		metrics.RecordRowSkipped()
		logger.Logger.Warn("Skipping malformed record row",
			zap.String("run_id", summary.RunID),
			zap.String("reason", rowErr.Error()),
		)
	}

	for _, rec := range records {
		for _, ev := range reminder.Evaluate(rec, today) {
			metrics.RecordEventDue(string(ev.Class))
			summary.EventsDue++

			if s.processEvent(ctx, summary, rec, ev, today, date) {
				summary.Published++
			}
		}
	}

	logger.Logger.Info("Reminder run finished",
		zap.String("run_id", summary.RunID),
		zap.String("date", date),
		zap.Int("records_read", summary.RecordsRead),
		zap.Int("rows_skipped", summary.RowsSkipped),
		zap.Int("events_due", summary.EventsDue),
		zap.Int("published", summary.Published),
		zap.Int("suppressed", summary.Suppressed),
		zap.Int("errors", summary.Errors),
	)

	return summary, nil
}

// processEvent 对单个到期事件做去重判断并入队，返回是否已发布
func (s *ReminderService) processEvent(
	ctx context.Context,
	summary *RunSummary,
	rec model.DeadlineRecord,
	ev model.ReminderEvent,
	today time.Time,
	date string,
) bool {
	st, err := s.store.GetStatus(ctx, ev.RecordID, ev.ThresholdKey)
	if err != nil {
		summary.Errors++
		logger.Logger.Error("Failed to load reminder status",
			zap.String("run_id", summary.RunID),
			zap.String("record_id", ev.RecordID),
			zap.Int("threshold_key", ev.ThresholdKey),
			zap.Error(err),
		)
		return false
	}

	if !status.ShouldDispatch(st, ev.Class, today) {
		summary.Suppressed++
		metrics.RecordEventSuppressed(string(ev.Class))
		return false
	}

	published, err := s.marks.IsPublished(ctx, date, ev.RecordID, ev.ThresholdKey)
	if err != nil {
		// 标记检查失败时继续发布，消费侧仍有消息级幂等兜底
		logger.Logger.Warn("Failed to check published mark",
			zap.String("run_id", summary.RunID),
			zap.String("record_id", ev.RecordID),
			zap.Error(err),
		)
	} else if published {
		summary.Suppressed++
		metrics.RecordEventSuppressed(string(ev.Class))
		return false
	}

	msg := queue.DispatchMessage{
		RunID:       summary.RunID,
		Date:        date,
		ScheduledAt: time.Now().Format(time.RFC3339),
		Event:       ev,
		Record:      queue.SnapshotRecord(rec),
	}

	if err := s.marks.MarkPublished(ctx, date, ev.RecordID, ev.ThresholdKey); err != nil {
		logger.Logger.Warn("Failed to set published mark",
			zap.String("run_id", summary.RunID),
			zap.String("record_id", ev.RecordID),
			zap.Error(err),
		)
	}

	if err := s.publish(msg); err != nil {
		summary.Errors++
		// 回滚标记，下一次运行还能重新入队
		if unmarkErr := s.marks.UnmarkPublished(ctx, date, ev.RecordID, ev.ThresholdKey); unmarkErr != nil {
			logger.Logger.Warn("Failed to roll back published mark",
				zap.String("run_id", summary.RunID),
				zap.String("record_id", ev.RecordID),
				zap.Error(unmarkErr),
			)
		}
		return false
	}

	return true
}
