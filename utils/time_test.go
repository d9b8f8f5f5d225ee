package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 12, 1, 23, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), DateOnly(ts))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 12, 1, 0, 5, 0, 0, time.UTC)
	b := time.Date(2025, 12, 1, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}

func TestParseAndFormatDate(t *testing.T) {
	parsed, err := ParseDate("2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), parsed)
	assert.Equal(t, "2025-12-01", FormatDate(parsed))

	_, err = ParseDate("12/01/2025")
	assert.Error(t, err)
}

func TestDaysUntil(t *testing.T) {
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(today, today))
	assert.Equal(t, 7, DaysUntil(today, time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -3, DaysUntil(today, time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)))

	// 时分秒不影响天数差
	assert.Equal(t, 1, DaysUntil(today, time.Date(2025, 12, 2, 23, 0, 0, 0, time.UTC)))
}
