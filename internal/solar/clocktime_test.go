package solar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input    string
		expected ClockTime
		wantErr  bool
	}{
		{"06:30", NewClockTime(6, 30, 0), false},
		{"00:00", 0, false},
		{"23:59", NewClockTime(23, 59, 0), false},
		{" 18:05 ", NewClockTime(18, 5, 0), false},
		{"07:15:30", NewClockTime(7, 15, 30), false},
		{"24:00", 0, true},
		{"6pm", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClockTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClockTime_Normalization(t *testing.T) {
	assert.Equal(t, NewClockTime(1, 0, 0), ClockTimeFromHours(25))
	assert.Equal(t, NewClockTime(23, 0, 0), ClockTimeFromHours(-1))
	assert.Equal(t, NewClockTime(23, 30, 0), NewClockTime(0, -30, 0))
	assert.Equal(t, NewClockTime(0, 15, 0), NewClockTime(23, 45, 0).Add(30*time.Minute))
	assert.Equal(t, NewClockTime(23, 45, 0), NewClockTime(0, 15, 0).Add(-30*time.Minute))
}

func TestClockTime_Components(t *testing.T) {
	c := NewClockTime(14, 7, 9)
	assert.Equal(t, 14, c.Hour())
	assert.Equal(t, 7, c.Minute())
	assert.Equal(t, 9, c.Second())
	assert.Equal(t, "14:07", c.String())
	assert.InDelta(t, 14.1191, c.Hours(), 0.0001)
}

func TestClockTime_On(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	day := time.Date(2025, time.March, 9, 22, 10, 0, 0, loc)

	on := NewClockTime(6, 45, 0).On(day)
	assert.Equal(t, time.Date(2025, time.March, 9, 6, 45, 0, 0, loc), on)
	assert.Equal(t, NewClockTime(22, 10, 0), ClockTimeOf(day))
}

func TestClockTime_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		At ClockTime `json:"at"`
	}{NewClockTime(6, 5, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"06:05"}`, string(data))

	var decoded struct {
		At ClockTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"19:45"}`), &decoded))
	assert.Equal(t, NewClockTime(19, 45, 0), decoded.At)
}

func TestInWindow(t *testing.T) {
	at := func(s string) ClockTime {
		c, err := ParseClockTime(s)
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name       string
		now        string
		start, end string
		expected   bool
	}{
		{"afternoon inside day window", "14:00", "06:30", "20:00", true},
		{"exactly at start is inside", "06:30", "06:30", "20:00", true},
		{"exactly at end is outside", "20:00", "06:30", "20:00", false},
		{"before start", "05:00", "06:30", "20:00", false},
		{"wrapping window late evening", "22:00", "20:00", "06:00", true},
		{"wrapping window early morning", "03:00", "20:00", "06:00", true},
		{"wrapping window midday", "12:00", "20:00", "06:00", false},
		{"empty window", "12:00", "12:00", "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InWindow(at(tt.now), at(tt.start), at(tt.end)))
		})
	}
}
