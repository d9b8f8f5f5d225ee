package record

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"DueBell/internal/model"
	pkgerrors "DueBell/pkg/errors"
)

// TableSource 默认的记录存储实现：PostgreSQL 的 deadline_records 表
type TableSource struct {
	db *gorm.DB
}

func NewTableSource(db *gorm.DB) *TableSource {
	return &TableSource{db: db}
}

func (s *TableSource) ReadAll(ctx context.Context) ([]model.DeadlineRecord, []RowError, error) {
	var rows []model.DeadlineRecordRow

	// 按主键序读取，保证跑批处理顺序稳定
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	records := make([]model.DeadlineRecord, 0, len(rows))
	var rowErrs []RowError

	for i := range rows {
		rec, rowErr := normalizeRow(&rows[i], i+1)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		records = append(records, rec)
	}

	return records, rowErrs, nil
}

func (s *TableSource) WriteStatusNote(ctx context.Context, recordID, note string) error {
	result := s.db.WithContext(ctx).
		Model(&model.DeadlineRecordRow{}).
		Where("record_id = ?", recordID).
		Update("status_note", note)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.RecordNotFound
	}

	return nil
}

// FindByID 按 RecordID 取单条记录，状态查询接口用
func (s *TableSource) FindByID(ctx context.Context, recordID string) (*model.DeadlineRecord, error) {
	var row model.DeadlineRecordRow

	err := s.db.WithContext(ctx).Where("record_id = ?", recordID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.RecordNotFound
		}
		return nil, err
	}

	rec, rowErr := normalizeRow(&row, 1)
	if rowErr != nil {
		return nil, pkgerrors.RecordInvalid
	}

	return &rec, nil
}
