package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DueBell/internal/model"
)

func TestSnapshotRecordRestore(t *testing.T) {
	rec := model.DeadlineRecord{
		RecordID:      "ins-2025-01",
		Category:      "insurance",
		Description:   "Car insurance premium",
		DueDate:       time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		AdvanceDays:   []int{30, 7, 0},
		PolicyNo:      "POL-8871",
		Amount:        "1200.00",
		NameOnInvoice: "J. Smith",
		PlaceBranch:   "Downtown branch",
		Notes:         "renewal pending",
	}

	restored, err := SnapshotRecord(rec).Restore()
	require.NoError(t, err)

	assert.Equal(t, rec.RecordID, restored.RecordID)
	assert.Equal(t, rec.Description, restored.Description)
	assert.Equal(t, rec.DueDate, restored.DueDate)
	assert.Equal(t, rec.PolicyNo, restored.PolicyNo)
	assert.Equal(t, rec.Notes, restored.Notes)
	// 消费侧不需要 schedule，快照不携带
	assert.Empty(t, restored.AdvanceDays)
}

func TestRestoreRejectsBadDate(t *testing.T) {
	snap := RecordSnapshot{RecordID: "r1", Description: "x", DueDate: "12/01/2025"}

	_, err := snap.Restore()
	assert.Error(t, err)
}

func TestDispatchMessageParseDate(t *testing.T) {
	msg := DispatchMessage{Date: "2025-12-01"}

	parsed, err := msg.ParseDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), parsed)
}
