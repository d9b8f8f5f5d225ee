package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly 截断到日历日，时区保持不变
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay 判断两个时间是否落在同一日历日
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate 解析 YYYY-MM-DD 格式的日期字符串
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysUntil 计算从 today 到 due 的整天数，过期为负
func DaysUntil(today, due time.Time) int {
	return int(DateOnly(due).Sub(DateOnly(today)).Hours() / 24)
}
