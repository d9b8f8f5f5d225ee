package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// 渠道投递结果取值
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// ReminderStatus 提醒投递状态，(RecordID, ThresholdKey) 复合唯一
// 只在至少一个渠道成功后创建；核心从不删除它
type ReminderStatus struct {
	BaseModel
	RecordID        string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_reminder_statuses_key" json:"record_id"`
	ThresholdKey    int        `gorm:"not null;uniqueIndex:idx_reminder_statuses_key" json:"threshold_key"`
	Class           EventClass `gorm:"type:varchar(16);not null" json:"class"`
	DeliveredAt     time.Time  `gorm:"type:timestamptz;not null" json:"delivered_at"`
	ChannelOutcomes JSONB      `gorm:"type:jsonb;not null" json:"channel_outcomes"`
	Handled         bool       `gorm:"not null;default:false;index" json:"handled"`
	HandledAt       *time.Time `gorm:"type:timestamptz" json:"handled_at,omitempty"`
}

// TableName 指定表名
func (ReminderStatus) TableName() string {
	return "reminder_statuses"
}

// JSONB 自定义 JSONB 类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, j)
}
