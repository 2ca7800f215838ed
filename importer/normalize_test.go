package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{"dd-mm-yyyy", "15-03-2024", "2024-03-15", true},
		{"dd/mm/yyyy", "15/03/2024", "2024-03-15", true},
		{"single digit day and month", "5/3/2024", "2024-03-05", true},
		{"iso", "2024-03-15", "2024-03-15", true},
		{"iso with spaces", "  2024-03-15 ", "2024-03-15", true},
		{"excel serial float", 45366.0, "2024-03-15", true},
		{"excel serial int", 45474, "2024-07-01", true},
		{"excel serial as text", "45627", "2024-12-01", true},
		{"serial with time of day", 45366.75, "2024-03-15", true},
		{"native date", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024-03-15", true},
		{"native date late in the day with offset", time.Date(2024, 3, 15, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800)), "2024-03-15", true},
		{"long month", "15 March 2024", "2024-03-15", true},
		{"us style", "March 15, 2024", "2024-03-15", true},
		{"dotted", "15.03.2024", "2024-03-15", true},
		{"impossible day", "31-02-2024", "", false},
		{"impossible iso", "2024-13-01", "", false},
		{"free text", "next monday", "", false},
		{"empty", "", "", false},
		{"nil", nil, "", false},
		{"zero time", time.Time{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateFormatsAgree(t *testing.T) {
	dmy, ok := NormalizeDate("15-03-2024")
	assert.True(t, ok)
	iso, ok := NormalizeDate("2024-03-15")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15", dmy)
	assert.Equal(t, dmy, iso)
}

func TestNormalizeDateSerialMatchesNativeDate(t *testing.T) {
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	for _, serial := range []int{1, 60, 25569, 36526, 43831, 45292, 45366, 45657, 47483} {
		native := base.AddDate(0, 0, serial)

		fromSerial, ok := NormalizeDate(float64(serial))
		assert.True(t, ok, "serial %d", serial)
		fromNative, ok := NormalizeDate(native)
		assert.True(t, ok, "serial %d", serial)

		assert.Equal(t, fromNative, fromSerial, "serial %d", serial)
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input any
		want  string
		ok    bool
	}{
		{"10:00", "10:00", true},
		{"9:05", "09:05", true},
		{"2:30", "14:30", true}, // before 8 without a marker is afternoon
		{"7:59", "19:59", true},
		{"8:00", "08:00", true},
		{"12:15", "12:15", true},
		{"2:30 PM", "14:30", true},
		{"2:30pm", "14:30", true},
		{"12:00 PM", "12:00", true},
		{"12:00 am", "00:00", true},
		{"7:30 AM", "07:30", true},
		{"11 AM", "11:00", true},
		{"10.30", "10:30", true},
		{0.5, "12:00", true},
		{0.4375, "10:30", true},
		{"0.4375", "10:30", true},
		{"25:00", "", false},
		{"10:75", "", false},
		{"10", "", false},
		{"noon", "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeTime(tt.input)
		assert.Equal(t, tt.ok, ok, "input %v", tt.input)
		assert.Equal(t, tt.want, got, "input %v", tt.input)
	}
}

func TestSplitTimeRange(t *testing.T) {
	start, end, ok := SplitTimeRange("10:00-11:00")
	assert.True(t, ok)
	assert.Equal(t, "10:00", start)
	assert.Equal(t, "11:00", end)

	start, end, ok = SplitTimeRange("2:00 – 4:00")
	assert.True(t, ok)
	assert.Equal(t, "14:00", start)
	assert.Equal(t, "16:00", end)

	start, end, ok = SplitTimeRange("9:00 AM to 10:00 AM")
	assert.True(t, ok)
	assert.Equal(t, "09:00", start)
	assert.Equal(t, "10:00", end)

	start, end, ok = SplitTimeRange("10:00")
	assert.True(t, ok)
	assert.Equal(t, "10:00", start)
	assert.Equal(t, "", end)

	_, _, ok = SplitTimeRange("TBA")
	assert.False(t, ok)
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "abc", CellText("  abc "))
	assert.Equal(t, "text", CellText(`="text"`))
	assert.Equal(t, "9876543210", CellText(9876543210.0))
	assert.Equal(t, "3.5", CellText(3.5))
	assert.Equal(t, "42", CellText(42))
	assert.Equal(t, "2024-03-15", CellText(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
}
