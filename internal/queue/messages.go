package queue

import (
	"time"

	"DueBell/internal/model"
	"DueBell/utils"
)

// DispatchMessage 一条待投递的提醒事件，Orchestrator 产出，worker 消费
// Record 是发布时刻的快照，worker 不再回读记录源
type DispatchMessage struct {
	MessageID   string         `json:"message_id"`
	RunID       string         `json:"run_id"`
	Date        string         `json:"date"` // 评估用的日历日 YYYY-MM-DD
	ScheduledAt string         `json:"scheduled_at"`
	Event       model.ReminderEvent `json:"event"`
	Record      RecordSnapshot `json:"record"`
}

// RecordSnapshot 投递时需要的记录字段
type RecordSnapshot struct {
	RecordID      string `json:"record_id"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	DueDate       string `json:"due_date"` // YYYY-MM-DD
	PolicyNo      string `json:"policy_no,omitempty"`
	Amount        string `json:"amount,omitempty"`
	NameOnInvoice string `json:"name_on_invoice,omitempty"`
	PlaceBranch   string `json:"place_branch,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// SnapshotRecord 业务记录 -> 消息快照
func SnapshotRecord(rec model.DeadlineRecord) RecordSnapshot {
	return RecordSnapshot{
		RecordID:      rec.RecordID,
		Category:      rec.Category,
		Description:   rec.Description,
		DueDate:       utils.FormatDate(rec.DueDate),
		PolicyNo:      rec.PolicyNo,
		Amount:        rec.Amount,
		NameOnInvoice: rec.NameOnInvoice,
		PlaceBranch:   rec.PlaceBranch,
		Notes:         rec.Notes,
	}
}

// Restore 消息快照 -> 业务记录
func (s RecordSnapshot) Restore() (model.DeadlineRecord, error) {
	due, err := utils.ParseDate(s.DueDate)
	if err != nil {
		return model.DeadlineRecord{}, err
	}

	return model.DeadlineRecord{
		RecordID:      s.RecordID,
		Category:      s.Category,
		Description:   s.Description,
		DueDate:       due,
		PolicyNo:      s.PolicyNo,
		Amount:        s.Amount,
		NameOnInvoice: s.NameOnInvoice,
		PlaceBranch:   s.PlaceBranch,
		Notes:         s.Notes,
	}, nil
}

// ParseDate 消息里的评估日
func (m DispatchMessage) ParseDate() (time.Time, error) {
	return utils.ParseDate(m.Date)
}
