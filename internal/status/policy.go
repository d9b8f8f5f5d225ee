package status

import (
	"time"

	"DueBell/internal/model"
	"DueBell/utils"
)

// ShouldDispatch 去重策略，纯函数
//
// ADVANCE/DUE：同键只要有过成功投递就永久抑制
// OVERDUE：已处理则无条件抑制；未处理时按日历日抑制，跨天允许重发
func ShouldDispatch(st *model.ReminderStatus, class model.EventClass, today time.Time) bool {
	if st == nil {
		return true
	}

	if class != model.EventClassOverdue {
		return false
	}

	if st.Handled {
		return false
	}

	return !utils.SameDay(st.DeliveredAt, today)
}
