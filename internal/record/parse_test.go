package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DueBell/internal/model"
)

func TestParseAdvanceDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    []int
		wantErr bool
	}{
		{raw: "", want: nil},
		{raw: "   ", want: nil},
		{raw: "30", want: []int{30}},
		{raw: "180, 30,7,0", want: []int{0, 7, 30, 180}},
		{raw: "7,7,7", want: []int{7}},
		{raw: "7,,30", want: []int{7, 30}},
		{raw: "7,abc", wantErr: true},
		{raw: "7,-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAdvanceDays(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	due := time.Date(2025, 12, 1, 10, 30, 0, 0, time.UTC)

	row := &model.DeadlineRecordRow{
		RecordID:    "ins-1",
		Category:    "insurance",
		Description: "Car insurance premium",
		DueDate:     &due,
		AdvanceDays: "30,7,0",
		PolicyNo:    "POL-8871",
	}

	rec, rowErr := normalizeRow(row, 1)
	require.Nil(t, rowErr)
	assert.Equal(t, "ins-1", rec.RecordID)
	assert.Equal(t, []int{0, 7, 30}, rec.AdvanceDays)
	// 日期截断到日历日
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), rec.DueDate)
}

func TestNormalizeRowRejectsMissingFields(t *testing.T) {
	due := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		row    *model.DeadlineRecordRow
		reason string
	}{
		{
			name:   "missing record_id",
			row:    &model.DeadlineRecordRow{Description: "x", DueDate: &due},
			reason: "missing record_id",
		},
		{
			name:   "missing description",
			row:    &model.DeadlineRecordRow{RecordID: "r1", DueDate: &due},
			reason: "missing description",
		},
		{
			name:   "missing due_date",
			row:    &model.DeadlineRecordRow{RecordID: "r1", Description: "x"},
			reason: "missing due_date",
		},
		{
			name:   "bad schedule",
			row:    &model.DeadlineRecordRow{RecordID: "r1", Description: "x", DueDate: &due, AdvanceDays: "7,-1"},
			reason: "non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rowErr := normalizeRow(tt.row, 3)
			require.NotNil(t, rowErr)
			assert.Equal(t, 3, rowErr.Row)
			assert.Contains(t, rowErr.Reason, tt.reason)
		})
	}
}

func TestRowErrorString(t *testing.T) {
	withID := RowError{RecordID: "r1", Row: 4, Reason: "missing description"}
	assert.Equal(t, "record r1 (row 4): missing description", withID.Error())

	anonymous := RowError{Row: 2, Reason: "missing record_id"}
	assert.Equal(t, "row 2: missing record_id", anonymous.Error())
}
