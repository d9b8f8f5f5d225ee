package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"DueBell/internal/model"
	"DueBell/internal/record"
	"DueBell/internal/status"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/pkg/metrics"
	"DueBell/storage/database"
)

// ActionService 处理「已处理」回执：置 handled 标记并回写记录源标注
type ActionService struct {
	store status.Store
	notes record.Writer
	now   func() time.Time
}

var (
	actionService *ActionService
	actionOnce    sync.Once
)

func Action() *ActionService {
	actionOnce.Do(func() {
		actionService = NewActionService(
			status.NewGormStore(database.DB()),
			record.NewTableSource(database.DB()),
		)
	})
	return actionService
}

func NewActionService(store status.Store, notes record.Writer) *ActionService {
	return &ActionService{
		store: store,
		notes: notes,
		now:   time.Now,
	}
}

// MarkHandled 把某条提醒标记为已处理，幂等
// 状态行不存在返回 errors.ReminderNotFound
func (s *ActionService) MarkHandled(ctx context.Context, recordID string, thresholdKey int) (*model.ReminderStatus, error) {
	st, err := s.store.MarkHandled(ctx, recordID, thresholdKey, s.now())
	if err != nil {
		return nil, err
	}

	metrics.RecordReminderHandled()

	// 回写记录源是尽力而为，失败不回滚 handled 标记
	if err := s.notes.WriteStatusNote(ctx, recordID, "Handled"); err != nil {
		logger.Logger.Warn("Failed to write status note back to record source",
			zap.String("record_id", recordID),
			zap.Int("threshold_key", thresholdKey),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Reminder marked handled",
		zap.String("record_id", recordID),
		zap.Int("threshold_key", thresholdKey),
	)

	return st, nil
}

// GetReminders 查询某条记录的全部提醒状态，按阈值升序
func (s *ActionService) GetReminders(ctx context.Context, recordID string) ([]model.ReminderStatus, error) {
	statuses, err := s.store.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, errors.ReminderNotFound
	}
	return statuses, nil
}
