package model

import (
	"time"
)

// DeadlineRecord 业务侧的截止日期记录，外部记录源读出并归一化之后的形态
// RecordID 是显式的稳定标识，不依赖行号，外部重排不会漂移
type DeadlineRecord struct {
	RecordID    string
	Category    string
	Description string
	DueDate     time.Time // 只有日历日，无时间部分
	AdvanceDays []int     // 去重后升序，如 [0 7 30 180]

	// 展示用元数据，原样透传到通知正文
	PolicyNo      string
	Amount        string
	NameOnInvoice string
	PlaceBranch   string
	Notes         string

	// 处理完成后回写的状态标注
	StatusNote string
}

// DeadlineRecordRow 默认记录源（PostgreSQL 表）的行结构
// AdvanceDays 存原始逗号分隔串，读取时解析，保持与表格类外部源一致的宽松格式
type DeadlineRecordRow struct {
	BaseModel
	RecordID      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_id"`
	Category      string     `gorm:"type:varchar(64)" json:"category"`
	Description   string     `gorm:"type:varchar(255);not null" json:"description"`
	DueDate       *time.Time `gorm:"type:date" json:"due_date"`
	AdvanceDays   string     `gorm:"type:varchar(128)" json:"advance_days"`
	PolicyNo      string     `gorm:"type:varchar(64)" json:"policy_no"`
	Amount        string     `gorm:"type:varchar(32)" json:"amount"`
	NameOnInvoice string     `gorm:"type:varchar(128)" json:"name_on_invoice"`
	PlaceBranch   string     `gorm:"type:varchar(128)" json:"place_branch"`
	Notes         string     `gorm:"type:varchar(255)" json:"notes"`
	StatusNote    string     `gorm:"type:varchar(64)" json:"status_note"`
}

// TableName 指定表名
func (DeadlineRecordRow) TableName() string {
	return "deadline_records"
}

// EventClass 提醒事件类别枚举
type EventClass string

const (
	EventClassAdvance EventClass = "advance" // 提前量提醒
	EventClassDue     EventClass = "due"     // 到期日提醒
	EventClassOverdue EventClass = "overdue" // 逾期提醒，处理前每天重发
)

// OverdueThresholdKey 逾期事件的哨兵阈值，与任何非负的提前量区分开
const OverdueThresholdKey = -1

// ReminderEvent 派生的提醒事件，不落库，(RecordID, ThresholdKey) 是幂等键
type ReminderEvent struct {
	RecordID     string     `json:"record_id"`
	ThresholdKey int        `json:"threshold_key"`
	Class        EventClass `json:"class"`
}
