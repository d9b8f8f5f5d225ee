package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"DueBell/internal/cache"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/storage/mq"
)

type DispatchService interface {
	ProcessDispatch(ctx context.Context, msg DispatchMessage) error
}

var dispatchService DispatchService

// SetDispatchService 设置投递服务（在 worker 启动时调用）
func SetDispatchService(s DispatchService) {
	dispatchService = s
}

// StartDispatchConsumer 启动提醒投递消费者
func StartDispatchConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg DispatchMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal dispatch message: %w", err)
		}

		// 【幂等性检查】使用 SETNX 原子性地检查并标记消息正在处理
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 如果检查失败，继续处理（不阻塞业务），但可能重复处理
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("record_id", msg.Event.RecordID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing dispatch message",
			zap.String("message_id", msg.MessageID),
			zap.String("run_id", msg.RunID),
			zap.String("record_id", msg.Event.RecordID),
			zap.Int("threshold_key", msg.Event.ThresholdKey),
			zap.String("class", string(msg.Event.Class)),
		)

		if dispatchService == nil {
			logger.Logger.Error("DispatchService not initialized",
				zap.String("message_id", msg.MessageID),
			)
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("dispatch service not initialized")
		}

		if err := dispatchService.ProcessDispatch(ctx, msg); err != nil {
			// 策略抑制等跳过场景：标记已处理，避免重投
			if errors.IsSkipMessageError(err) {
				if markErr := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); markErr != nil {
					logger.Logger.Warn("Failed to mark skipped message as processed",
						zap.String("message_id", msg.MessageID),
						zap.Error(markErr),
					)
				}
				return err
			}

			// 其他错误：取消标记，允许重试
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to process dispatch: %w", err)
		}

		// 处理成功，标记为已完成（TTL 延长到 48 小时）
		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 不影响主流程，因为已经处理成功了
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueDispatch,
		ConsumerTag:   "reminder_dispatch_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"reminder_dispatch", StartDispatchConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()

	logger.Logger.Info("All consumers started")
}
