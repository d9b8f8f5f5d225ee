package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"DueBell/internal/model"
	"DueBell/utils"
)

// ParseAdvanceDays 解析逗号分隔的提前量串，如 "180, 30,7,0"
// 去重、升序；负数视为非法
func ParseAdvanceDays(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var days []int

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid advance day %q: %w", part, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("advance day must be non-negative, got %d", d)
		}

		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}

	sort.Ints(days)
	return days, nil
}

// normalizeRow 把一行存储结构转换为业务记录，缺必填字段报 RowError
func normalizeRow(row *model.DeadlineRecordRow, pos int) (model.DeadlineRecord, *RowError) {
	if row.RecordID == "" {
		return model.DeadlineRecord{}, &RowError{Row: pos, Reason: "missing record_id"}
	}
	if row.Description == "" {
		return model.DeadlineRecord{}, &RowError{RecordID: row.RecordID, Row: pos, Reason: "missing description"}
	}
	if row.DueDate == nil {
		return model.DeadlineRecord{}, &RowError{RecordID: row.RecordID, Row: pos, Reason: "missing due_date"}
	}

	days, err := ParseAdvanceDays(row.AdvanceDays)
	if err != nil {
		return model.DeadlineRecord{}, &RowError{RecordID: row.RecordID, Row: pos, Reason: err.Error()}
	}

	return model.DeadlineRecord{
		RecordID:      row.RecordID,
		Category:      row.Category,
		Description:   row.Description,
		DueDate:       utils.DateOnly(*row.DueDate),
		AdvanceDays:   days,
		PolicyNo:      row.PolicyNo,
		Amount:        row.Amount,
		NameOnInvoice: row.NameOnInvoice,
		PlaceBranch:   row.PlaceBranch,
		Notes:         row.Notes,
		StatusNote:    row.StatusNote,
	}, nil
}
