package notify

import (
	"fmt"
	"strings"
	"time"

	"DueBell/internal/model"
	"DueBell/utils"
)

// Render 根据事件类别和记录生成通知载荷
func Render(event model.ReminderEvent, rec model.DeadlineRecord, today time.Time) Message {
	dueStr := utils.FormatDate(rec.DueDate)

	switch event.Class {
	case model.EventClassOverdue:
		overdueDays := -utils.DaysUntil(today, rec.DueDate)
		subject := fmt.Sprintf("OVERDUE: %s", rec.Description)
		body := fmt.Sprintf("This item was due on %s and is overdue by %d days.\n%s",
			dueStr, overdueDays, detailBlock(rec))

		return Message{
			Subject: subject,
			Body:    body,
			Short:   fmt.Sprintf("🚨 %s\nDue %s, overdue by %d days.", subject, dueStr, overdueDays),
			Event:   event,
		}

	case model.EventClassDue:
		subject := fmt.Sprintf("Due today: %s", rec.Description)
		body := fmt.Sprintf("This is a reminder that your '%s' is due today (%s).\n\n%s",
			rec.Description, dueStr, detailBlock(rec))

		return Message{
			Subject: subject,
			Body:    body,
			Short:   fmt.Sprintf("🔔 %s", subject),
			Event:   event,
		}

	default:
		subject := fmt.Sprintf("Reminder: %s in %d days", rec.Description, event.ThresholdKey)
		body := fmt.Sprintf("This is a reminder that your '%s' is due on %s.\n\n%s",
			rec.Description, dueStr, detailBlock(rec))

		return Message{
			Subject: subject,
			Body:    body,
			Short:   fmt.Sprintf("🔔 %s", subject),
			Event:   event,
		}
	}
}

func detailBlock(rec model.DeadlineRecord) string {
	var sb strings.Builder

	sb.WriteString("Policy/Inv. No.: " + orNA(rec.PolicyNo))
	sb.WriteString("\nAmount: " + orNA(rec.Amount))
	sb.WriteString("\nName on Inv.: " + orNA(rec.NameOnInvoice))
	sb.WriteString("\nPlace/Branch: " + orNA(rec.PlaceBranch))

	if rec.Notes != "" {
		sb.WriteString("\nNotes: " + rec.Notes)
	}

	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// CallbackData 按钮回调里携带的 (record, threshold) 标识
func CallbackData(event model.ReminderEvent) string {
	return fmt.Sprintf("handled:%s:%d", event.RecordID, event.ThresholdKey)
}

// ParseCallbackData 解析回调载荷，格式不符返回 ok=false
func ParseCallbackData(data string) (recordID string, thresholdKey int, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "handled" || parts[1] == "" {
		return "", 0, false
	}

	var key int
	if _, err := fmt.Sscanf(parts[2], "%d", &key); err != nil {
		return "", 0, false
	}

	return parts[1], key, true
}
