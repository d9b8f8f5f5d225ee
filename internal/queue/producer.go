package queue

import (
	"fmt"

	"DueBell/pkg/logger"
	"DueBell/pkg/snowflake"
	"DueBell/storage/mq"

	"go.uber.org/zap"
)

// PublishDispatch 发布一条投递消息到 reminders.dispatch
func PublishDispatch(msg DispatchMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("record_id", msg.Event.RecordID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("dispatch_%d", id)
	}

	err := mq.PublishMessage(
		mq.ExchangeReminders,
		mq.RoutingKeyDispatch,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish dispatch message",
			zap.String("message_id", msg.MessageID),
			zap.String("record_id", msg.Event.RecordID),
			zap.Int("threshold_key", msg.Event.ThresholdKey),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published dispatch message",
		zap.String("message_id", msg.MessageID),
		zap.String("run_id", msg.RunID),
		zap.String("record_id", msg.Event.RecordID),
		zap.Int("threshold_key", msg.Event.ThresholdKey),
		zap.String("class", string(msg.Event.Class)),
	)

	return nil
}
