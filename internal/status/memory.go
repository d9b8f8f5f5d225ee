package status

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"DueBell/internal/model"
	pkgerrors "DueBell/pkg/errors"
)

// MemoryStore Store 的进程内实现，测试用
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*model.ReminderStatus

	// FailNext 置 true 时下一次调用返回错误并复位
	FailNext bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]*model.ReminderStatus),
	}
}

func key(recordID string, thresholdKey int) string {
	return fmt.Sprintf("%s#%d", recordID, thresholdKey)
}

func (s *MemoryStore) failNext() bool {
	if s.FailNext {
		s.FailNext = false
		return true
	}
	return false
}

func (s *MemoryStore) GetStatus(ctx context.Context, recordID string, thresholdKey int) (*model.ReminderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext() {
		return nil, errors.New("mock state store failure")
	}

	st, ok := s.rows[key(recordID, thresholdKey)]
	if !ok {
		return nil, nil
	}

	cp := *st
	return &cp, nil
}

func (s *MemoryStore) RecordSent(ctx context.Context, event model.ReminderEvent, deliveredAt time.Time, outcomes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext() {
		return errors.New("mock state store failure")
	}

	jsonb := make(model.JSONB, len(outcomes))
	for ch, outcome := range outcomes {
		jsonb[ch] = outcome
	}

	k := key(event.RecordID, event.ThresholdKey)
	if existing, ok := s.rows[k]; ok {
		existing.Class = event.Class
		existing.DeliveredAt = deliveredAt
		existing.ChannelOutcomes = jsonb
		return nil
	}

	s.rows[k] = &model.ReminderStatus{
		RecordID:        event.RecordID,
		ThresholdKey:    event.ThresholdKey,
		Class:           event.Class,
		DeliveredAt:     deliveredAt,
		ChannelOutcomes: jsonb,
	}

	return nil
}

func (s *MemoryStore) MarkHandled(ctx context.Context, recordID string, thresholdKey int, now time.Time) (*model.ReminderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext() {
		return nil, errors.New("mock state store failure")
	}

	st, ok := s.rows[key(recordID, thresholdKey)]
	if !ok {
		return nil, pkgerrors.ReminderNotFound
	}

	if !st.Handled {
		st.Handled = true
		st.HandledAt = &now
	}

	cp := *st
	return &cp, nil
}

func (s *MemoryStore) ListByRecord(ctx context.Context, recordID string) ([]model.ReminderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext() {
		return nil, errors.New("mock state store failure")
	}

	var rows []model.ReminderStatus
	for _, st := range s.rows {
		if st.RecordID == recordID {
			rows = append(rows, *st)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ThresholdKey < rows[j].ThresholdKey
	})

	return rows, nil
}
