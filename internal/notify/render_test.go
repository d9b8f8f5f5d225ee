package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DueBell/internal/model"
)

func sampleRecord() model.DeadlineRecord {
	return model.DeadlineRecord{
		RecordID:      "ins-2025-01",
		Category:      "insurance",
		Description:   "Car insurance premium",
		DueDate:       time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		AdvanceDays:   []int{30, 7, 0},
		PolicyNo:      "POL-8871",
		Amount:        "1200.00",
		NameOnInvoice: "J. Smith",
		PlaceBranch:   "Downtown branch",
	}
}

func TestRenderAdvance(t *testing.T) {
	event := model.ReminderEvent{RecordID: "ins-2025-01", ThresholdKey: 7, Class: model.EventClassAdvance}
	msg := Render(event, sampleRecord(), time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Reminder: Car insurance premium in 7 days", msg.Subject)
	assert.Contains(t, msg.Body, "due on 2025-12-01")
	assert.Contains(t, msg.Body, "Policy/Inv. No.: POL-8871")
	assert.Contains(t, msg.Body, "Amount: 1200.00")
	assert.True(t, strings.HasPrefix(msg.Short, "🔔"))
}

func TestRenderDueToday(t *testing.T) {
	event := model.ReminderEvent{RecordID: "ins-2025-01", ThresholdKey: 0, Class: model.EventClassDue}
	msg := Render(event, sampleRecord(), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Due today: Car insurance premium", msg.Subject)
	assert.Contains(t, msg.Body, "due today (2025-12-01)")
	assert.True(t, strings.HasPrefix(msg.Short, "🔔"))
}

func TestRenderOverdue(t *testing.T) {
	event := model.ReminderEvent{RecordID: "ins-2025-01", ThresholdKey: model.OverdueThresholdKey, Class: model.EventClassOverdue}
	msg := Render(event, sampleRecord(), time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "OVERDUE: Car insurance premium", msg.Subject)
	assert.Contains(t, msg.Body, "overdue by 3 days")
	assert.True(t, strings.HasPrefix(msg.Short, "🚨"))
}

func TestRenderMissingDetailsFallBackToNA(t *testing.T) {
	rec := model.DeadlineRecord{
		RecordID:    "min-1",
		Description: "Land tax",
		DueDate:     time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	event := model.ReminderEvent{RecordID: "min-1", ThresholdKey: 0, Class: model.EventClassDue}

	msg := Render(event, rec, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, msg.Body, "Policy/Inv. No.: N/A")
	assert.Contains(t, msg.Body, "Name on Inv.: N/A")
	assert.NotContains(t, msg.Body, "Notes:")
}

func TestCallbackDataRoundTrip(t *testing.T) {
	event := model.ReminderEvent{RecordID: "ins-2025-01", ThresholdKey: model.OverdueThresholdKey, Class: model.EventClassOverdue}

	data := CallbackData(event)
	assert.Equal(t, "handled:ins-2025-01:-1", data)

	recordID, thresholdKey, ok := ParseCallbackData(data)
	require.True(t, ok)
	assert.Equal(t, "ins-2025-01", recordID)
	assert.Equal(t, model.OverdueThresholdKey, thresholdKey)
}

func TestParseCallbackDataRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"handled",
		"handled:rec-1",
		"handled::7",
		"handled:rec-1:seven",
		"resolved:rec-1:7",
	} {
		_, _, ok := ParseCallbackData(data)
		assert.False(t, ok, "data=%q", data)
	}
}
