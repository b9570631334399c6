package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)
}

func TestShiftCovers(t *testing.T) {
	tests := []struct {
		name  string
		shift ShiftType
		at    time.Time
		want  bool
	}{
		{"night shift at 02:00 is on duty", ShiftNight, clock(2, 0), true},
		{"night shift at 12:00 is off duty", ShiftNight, clock(12, 0), false},
		{"night shift at 22:00 start is on duty", ShiftNight, clock(22, 0), true},
		{"night shift at 07:00 end is on duty", ShiftNight, clock(7, 0), true},
		{"night shift at 07:01 is off duty", ShiftNight, clock(7, 1), false},
		{"early shift at 06:59 is off duty", ShiftEarly, clock(6, 59), false},
		{"early shift at 10:00 is on duty", ShiftEarly, clock(10, 0), true},
		{"early shift at 16:00 end is on duty", ShiftEarly, clock(16, 0), true},
		{"early shift at 16:30 is off duty", ShiftEarly, clock(16, 30), false},
		{"late shift at 23:30 is on duty", ShiftLate, clock(23, 30), true},
		{"late shift at midnight is on duty", ShiftLate, clock(0, 0), true},
		{"late shift at 00:30 is off duty", ShiftLate, clock(0, 30), false},
		{"late shift at 14:00 is off duty", ShiftLate, clock(14, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shift{Type: tt.shift}.Covers(tt.at))
		})
	}
}

func TestShiftEndAfter(t *testing.T) {
	t.Run("early shift assigned before start ends the same day", func(t *testing.T) {
		end := Shift{Type: ShiftEarly}.EndAfter(clock(6, 0))
		assert.Equal(t, clock(16, 0), end)
	})

	t.Run("night shift assigned mid-shift ends this morning", func(t *testing.T) {
		end := Shift{Type: ShiftNight}.EndAfter(clock(3, 0))
		assert.Equal(t, clock(7, 0), end)
	})

	t.Run("night shift assigned at noon ends tomorrow morning", func(t *testing.T) {
		end := Shift{Type: ShiftNight}.EndAfter(clock(12, 0))
		assert.Equal(t, clock(7, 0).AddDate(0, 0, 1), end)
	})

	t.Run("late shift ends at the next midnight", func(t *testing.T) {
		end := Shift{Type: ShiftLate}.EndAfter(clock(15, 0))
		assert.Equal(t, clock(0, 0).AddDate(0, 0, 1), end)
	})
}

func TestParseShiftType(t *testing.T) {
	st, err := ParseShiftType("night")
	require.NoError(t, err)
	assert.Equal(t, ShiftNight, st)
	assert.True(t, Shift{Type: st}.Wraps())
	assert.Equal(t, "night (22:00-07:00)", Shift{Type: st}.String())

	_, err = ParseShiftType("graveyard")
	assert.ErrorIs(t, err, ErrInvalidShift)
}

func TestOfficerStatusFromCode(t *testing.T) {
	st, err := OfficerStatusFromCode("03")
	require.NoError(t, err)
	assert.Equal(t, OfficerAvailableAtStation, st)
	assert.Equal(t, "03 - Available at station", st.String())
	assert.True(t, st.Deployable())

	st, err = OfficerStatusFromCode("99")
	require.NoError(t, err)
	assert.Equal(t, "Radio on", st.Description())
	assert.False(t, st.Deployable())

	for _, code := range []string{"13", "3", "", "AA"} {
		_, err := OfficerStatusFromCode(code)
		assert.ErrorIs(t, err, ErrInvalidStatusCode, "code %q", code)
	}
}
