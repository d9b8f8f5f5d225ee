package reminder

import (
	"sort"
	"time"

	"DueBell/internal/model"
	"DueBell/utils"
)

// Evaluate 计算记录在 today 这天应触发的提醒事件，纯函数，无副作用
//
// 规则：
//   - 对 schedule 中的每个 d，due - d == today 时触发一条事件，d == 0 为 DUE，否则 ADVANCE
//   - due < today 时额外触发一条 OVERDUE（哨兵阈值），处理前每天都会触发
//   - due == today 只算 DUE，不算 OVERDUE
//
// 返回按阈值升序（OVERDUE 哨兵 -1 在最前），每个阈值至多一条
func Evaluate(rec model.DeadlineRecord, today time.Time) []model.ReminderEvent {
	today = utils.DateOnly(today)
	due := utils.DateOnly(rec.DueDate)

	var events []model.ReminderEvent

	if due.Before(today) {
		events = append(events, model.ReminderEvent{
			RecordID:     rec.RecordID,
			ThresholdKey: model.OverdueThresholdKey,
			Class:        model.EventClassOverdue,
		})
	}

	seen := make(map[int]bool)
	for _, d := range rec.AdvanceDays {
		if d < 0 || seen[d] {
			continue
		}
		seen[d] = true

		if !due.AddDate(0, 0, -d).Equal(today) {
			continue
		}

		class := model.EventClassAdvance
		if d == 0 {
			class = model.EventClassDue
		}

		events = append(events, model.ReminderEvent{
			RecordID:     rec.RecordID,
			ThresholdKey: d,
			Class:        class,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].ThresholdKey < events[j].ThresholdKey
	})

	return events
}
