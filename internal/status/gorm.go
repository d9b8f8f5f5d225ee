package status

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"DueBell/internal/model"
	pkgerrors "DueBell/pkg/errors"
)

// GormStore Store 的 PostgreSQL 实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetStatus(ctx context.Context, recordID string, thresholdKey int) (*model.ReminderStatus, error) {
	var st model.ReminderStatus

	err := s.db.WithContext(ctx).
		Where("record_id = ? AND threshold_key = ?", recordID, thresholdKey).
		First(&st).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &st, nil
}

func (s *GormStore) RecordSent(ctx context.Context, event model.ReminderEvent, deliveredAt time.Time, outcomes map[string]string) error {
	jsonb := make(model.JSONB, len(outcomes))
	for ch, outcome := range outcomes {
		jsonb[ch] = outcome
	}

	st := model.ReminderStatus{
		RecordID:        event.RecordID,
		ThresholdKey:    event.ThresholdKey,
		Class:           event.Class,
		DeliveredAt:     deliveredAt,
		ChannelOutcomes: jsonb,
	}

	// 同键 upsert；OVERDUE 跨天重发会覆盖上一天的投递时间和渠道结果
	// handled 标记不在更新列里，投递覆盖不会清掉已处理状态
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "record_id"}, {Name: "threshold_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"class", "delivered_at", "channel_outcomes", "updated_at",
			}),
		}).
		Create(&st).Error
}

func (s *GormStore) MarkHandled(ctx context.Context, recordID string, thresholdKey int, now time.Time) (*model.ReminderStatus, error) {
	var st model.ReminderStatus

	err := s.db.WithContext(ctx).
		Where("record_id = ? AND threshold_key = ?", recordID, thresholdKey).
		First(&st).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ReminderNotFound
		}
		return nil, err
	}

	if st.Handled {
		return &st, nil // 幂等，重复点击不改时间戳
	}

	st.Handled = true
	st.HandledAt = &now

	if err := s.db.WithContext(ctx).
		Model(&st).
		Updates(map[string]interface{}{"handled": true, "handled_at": now}).Error; err != nil {
		return nil, err
	}

	return &st, nil
}

func (s *GormStore) ListByRecord(ctx context.Context, recordID string) ([]model.ReminderStatus, error) {
	var rows []model.ReminderStatus

	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("threshold_key asc").
		Find(&rows).Error

	return rows, err
}
