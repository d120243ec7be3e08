package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	since := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 15, DaysBetween(since, time.Date(2024, 1, 16, 0, 0, 1, 0, time.UTC)))
	assert.Equal(t, 14, DaysBetween(since, time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(since, since))
	assert.Equal(t, -1, DaysBetween(since, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestDaysBetween_AcrossZones(t *testing.T) {
	// 2024-01-02 01:00 in UTC+9 is still 2024-01-01 in UTC
	tokyo := time.FixedZone("KST", 9*60*60)
	since := time.Date(2024, 1, 2, 1, 0, 0, 0, tokyo)
	assert.Equal(t, 1, DaysBetween(since, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)))
}

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(d))
	assert.Equal(t, "2024-03-15", FormatDate(AddDays(d, 15)))

	_, err = ParseDate("2024/02/29")
	assert.Error(t, err)
}

func TestStamp(t *testing.T) {
	ts := time.Date(2024, 1, 16, 7, 5, 9, 0, time.UTC)
	assert.Equal(t, "2024-01-16_07-05-09", FormatStamp(ts))

	parsed, err := ParseStamp("2024-01-16_07-05-09")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))

	_, err = ParseStamp("2024-01-16")
	assert.Error(t, err)
}
