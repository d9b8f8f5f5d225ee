package record

import (
	"context"
	"errors"
	"sync"

	"DueBell/internal/model"
)

// MockSource 可配置的记录源 mock，实现 SourceWriter 接口
type MockSource struct {
	mu      sync.Mutex
	Records []model.DeadlineRecord
	RowErrs []RowError

	// Notes 记录 WriteStatusNote 的调用结果
	Notes map[string]string

	// FailRead / FailWrite 置 true 时下一次对应调用返回错误并复位
	FailRead  bool
	FailWrite bool
}

func NewMockSource(records ...model.DeadlineRecord) *MockSource {
	return &MockSource{
		Records: records,
		Notes:   make(map[string]string),
	}
}

func (m *MockSource) ReadAll(ctx context.Context) ([]model.DeadlineRecord, []RowError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRead {
		m.FailRead = false
		return nil, nil, errors.New("mock record read failure")
	}

	out := make([]model.DeadlineRecord, len(m.Records))
	copy(out, m.Records)
	return out, m.RowErrs, nil
}

func (m *MockSource) WriteStatusNote(ctx context.Context, recordID, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrite {
		m.FailWrite = false
		return errors.New("mock record write failure")
	}

	m.Notes[recordID] = note
	return nil
}
