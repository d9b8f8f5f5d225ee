package record

import (
	"context"
	"fmt"

	"DueBell/internal/model"
)

// 外部记录存储的读写契约；任何表格型后端实现这两个接口即可替换

// RowError 单行解析失败的报告，行级隔离，不影响整个读取
type RowError struct {
	RecordID string // 能识别出来就带上，识别不出为空
	Row      int    // 读取顺序中的位置，从 1 开始
	Reason   string
}

func (e RowError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("record %s (row %d): %s", e.RecordID, e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Source 读取全部截止日期记录
type Source interface {
	// ReadAll 返回归一化后的记录和行级错误；只有整体读取失败才返回 error
	ReadAll(ctx context.Context) ([]model.DeadlineRecord, []RowError, error)
}

// Writer 回写状态标注
type Writer interface {
	// WriteStatusNote 按 RecordID 设置状态标注，找不到记录返回错误
	WriteStatusNote(ctx context.Context, recordID, note string) error
}

// SourceWriter 同时支持读写的记录存储
type SourceWriter interface {
	Source
	Writer
}
