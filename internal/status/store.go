package status

import (
	"context"
	"time"

	"DueBell/internal/model"
)

// Store 提醒投递状态存储，(record_id, threshold_key) 做复合键的点查 + upsert
type Store interface {
	// GetStatus 点查，不存在时返回 (nil, nil)
	GetStatus(ctx context.Context, recordID string, thresholdKey int) (*model.ReminderStatus, error)

	// RecordSent 记录一次成功投递，同键已存在则覆盖（last-writer-wins）
	// 只能在至少一个渠道成功后调用
	RecordSent(ctx context.Context, event model.ReminderEvent, deliveredAt time.Time, outcomes map[string]string) error

	// MarkHandled 置 handled 标记，状态行不存在返回 errors.ReminderNotFound
	MarkHandled(ctx context.Context, recordID string, thresholdKey int, now time.Time) (*model.ReminderStatus, error)

	// ListByRecord 取某条记录的全部状态行，按阈值升序
	ListByRecord(ctx context.Context, recordID string) ([]model.ReminderStatus, error)
}
