package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"DueBell/internal/cache"
	"DueBell/internal/notify"
	"DueBell/internal/queue"
	"DueBell/internal/status"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/pkg/metrics"
	"DueBell/storage/database"
)

// DispatchService 消费侧投递：复核去重策略、扇出渠道、落状态行
type DispatchService struct {
	store      status.Store
	dispatcher *notify.Dispatcher
	marks      EventMarks
	now        func() time.Time
}

func NewDispatchService(store status.Store, dispatcher *notify.Dispatcher, marks EventMarks) *DispatchService {
	return &DispatchService{
		store:      store,
		dispatcher: dispatcher,
		marks:      marks,
		now:        time.Now,
	}
}

// InitDispatch 构建渠道并组装投递服务（worker 启动时调用）
// 渠道凭证取不到属于配置错误，直接失败
func InitDispatch(ctx context.Context) (*DispatchService, error) {
	channels, err := BuildChannels(ctx)
	if err != nil {
		return nil, err
	}

	return NewDispatchService(
		status.NewGormStore(database.DB()),
		notify.NewDispatcher(channels...),
		cache.RedisMarks{},
	), nil
}

// ProcessDispatch 处理一条投递消息
//
// 状态行只在至少一个渠道成功后写入；全渠道失败时回滚当日投放标记
// 并返回错误让消息重回队列，保证 at-least-once
func (s *DispatchService) ProcessDispatch(ctx context.Context, msg queue.DispatchMessage) error {
	today, err := msg.ParseDate()
	if err != nil {
		// 重投也救不回来的消息，直接跳过
		logger.Logger.Error("Dispatch message carries invalid date",
			zap.String("message_id", msg.MessageID),
			zap.String("date", msg.Date),
			zap.Error(err),
		)
		return &errors.SkipMessageError{Reason: fmt.Sprintf("invalid date %q", msg.Date)}
	}

	rec, err := msg.Record.Restore()
	if err != nil {
		logger.Logger.Error("Dispatch message carries invalid record snapshot",
			zap.String("message_id", msg.MessageID),
			zap.String("record_id", msg.Event.RecordID),
			zap.Error(err),
		)
		return &errors.SkipMessageError{Reason: fmt.Sprintf("invalid record snapshot for %s", msg.Event.RecordID)}
	}

	// 发布到消费之间状态可能已变化（人工标记已处理等），消费侧复核一次
	st, err := s.store.GetStatus(ctx, msg.Event.RecordID, msg.Event.ThresholdKey)
	if err != nil {
		return fmt.Errorf("failed to load reminder status: %w", err)
	}

	if !status.ShouldDispatch(st, msg.Event.Class, today) {
		metrics.RecordEventSuppressed(string(msg.Event.Class))
		logger.Logger.Info("Dispatch suppressed by dedup policy",
			zap.String("message_id", msg.MessageID),
			zap.String("record_id", msg.Event.RecordID),
			zap.Int("threshold_key", msg.Event.ThresholdKey),
			zap.String("class", string(msg.Event.Class)),
		)
		return &errors.SkipMessageError{Reason: fmt.Sprintf("reminder %s#%d suppressed", msg.Event.RecordID, msg.Event.ThresholdKey)}
	}

	outcomes, anySent := s.dispatcher.Dispatch(ctx, msg.Event, rec, today)

	if !anySent {
		// 全渠道失败：不落状态行，回滚投放标记，让消息重试
		if err := s.marks.UnmarkPublished(ctx, msg.Date, msg.Event.RecordID, msg.Event.ThresholdKey); err != nil {
			logger.Logger.Warn("Failed to roll back published mark after total failure",
				zap.String("message_id", msg.MessageID),
				zap.String("record_id", msg.Event.RecordID),
				zap.Error(err),
			)
		}
		logger.Logger.Error("All notification channels failed",
			zap.String("message_id", msg.MessageID),
			zap.String("record_id", msg.Event.RecordID),
			zap.Int("threshold_key", msg.Event.ThresholdKey),
			zap.Any("outcomes", notify.OutcomeStrings(outcomes)),
		)
		return errors.AllChannelsFailed
	}

	if err := s.store.RecordSent(ctx, msg.Event, s.now(), notify.OutcomeStrings(outcomes)); err != nil {
		// 通知已经发出去了，状态写失败只能大声记录
		// 不回滚不重试，重投会造成重复打扰
		logger.Logger.Error("Delivered but failed to persist reminder status",
			zap.String("message_id", msg.MessageID),
			zap.String("record_id", msg.Event.RecordID),
			zap.Int("threshold_key", msg.Event.ThresholdKey),
			zap.Error(err),
		)
		return nil
	}

	logger.Logger.Info("Reminder dispatched",
		zap.String("message_id", msg.MessageID),
		zap.String("record_id", msg.Event.RecordID),
		zap.Int("threshold_key", msg.Event.ThresholdKey),
		zap.String("class", string(msg.Event.Class)),
		zap.Any("outcomes", notify.OutcomeStrings(outcomes)),
	)

	return nil
}
