package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_DaysSince(t *testing.T) {
	start := MustDate("2024-01-01")

	assert.Equal(t, 0, start.DaysSince(start))
	assert.Equal(t, 3, MustDate("2024-01-04").DaysSince(start))
	assert.Equal(t, -1, MustDate("2023-12-31").DaysSince(start))
	assert.Equal(t, 366, MustDate("2025-01-01").DaysSince(start)) // 闰年
	assert.Equal(t, -365, MustDate("1969-12-31").DaysSince(MustDate("1970-12-31")))
}

func TestDate_AddDaysIsImmutable(t *testing.T) {
	d := MustDate("2024-02-28")
	next := d.AddDays(1)

	assert.Equal(t, "2024-02-28", d.String())
	assert.Equal(t, "2024-02-29", next.String())
	assert.Equal(t, "2024-03-01", next.AddDays(1).String())
}

func TestDate_DaysInclusive(t *testing.T) {
	assert.Equal(t, 1, DaysInclusive(MustDate("2024-03-01"), MustDate("2024-03-01")))
	assert.Equal(t, 2, DaysInclusive(MustDate("2024-03-01"), MustDate("2024-03-02")))
	assert.Equal(t, 0, DaysInclusive(MustDate("2024-03-02"), MustDate("2024-03-01")))
}

func TestDate_JSONAndScan(t *testing.T) {
	d := MustDate("2024-03-02")

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-02"`, string(data))

	var decoded Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(d))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, scanned.Equal(d))

	assert.Error(t, scanned.Scan(42))
	assert.Error(t, json.Unmarshal([]byte(`"02/03/2024"`), &decoded))
}

func TestClockTime_Parse(t *testing.T) {
	c, err := ParseClockTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8*60+30, c.Minutes())
	assert.Equal(t, "08:30", c.String())

	c, err = ParseClockTime("22:00:00")
	require.NoError(t, err)
	assert.Equal(t, "22:00", c.String())

	_, err = ParseClockTime("25:00")
	assert.Error(t, err)

	var scanned ClockTime
	require.NoError(t, scanned.Scan([]byte("06:15:00")))
	assert.Equal(t, "06:15", scanned.String())

	v, err := scanned.Value()
	require.NoError(t, err)
	assert.Equal(t, "06:15:00", v)
}

func TestSpanMinutes(t *testing.T) {
	minutes, spans := SpanMinutes(MustClockTime("08:00"), MustClockTime("16:00"))
	assert.Equal(t, 480, minutes)
	assert.False(t, spans)

	minutes, spans = SpanMinutes(MustClockTime("22:00"), MustClockTime("06:00"))
	assert.Equal(t, 480, minutes)
	assert.True(t, spans)

	// 开始等于结束表示整整 24 小时
	minutes, spans = SpanMinutes(MustClockTime("08:00"), MustClockTime("08:00"))
	assert.Equal(t, 1440, minutes)
	assert.True(t, spans)
}

func TestEmployee_Assignment(t *testing.T) {
	id := int64(7)

	ref, ok := (&Employee{ID: 1, WeekPatternID: &id}).Assignment()
	assert.True(t, ok)
	assert.Equal(t, ScheduleRef{Kind: ScheduleKindWeekPattern, ID: 7}, ref)

	ref, ok = (&Employee{ID: 1, ShiftScheduleID: &id}).Assignment()
	assert.True(t, ok)
	assert.Equal(t, ScheduleKindShiftSchedule, ref.Kind)

	_, ok = (&Employee{ID: 1}).Assignment()
	assert.False(t, ok)

	_, ok = (&Employee{ID: 1, WeekPatternID: &id, ShiftScheduleID: &id}).Assignment()
	assert.False(t, ok)
}

func TestErrors_Unwrap(t *testing.T) {
	var err error = &ValidationError{Field: "days", Reason: "需要 7 天"}
	assert.True(t, errors.Is(err, ErrInvalidSchedule))

	err = &RangeError{Reason: "开始日期晚于结束日期"}
	assert.True(t, errors.Is(err, ErrInvalidRange))

	err = &UnassignedScheduleError{EmployeeID: 2}
	assert.True(t, errors.Is(err, ErrUnassignedSchedule))
	assert.Contains(t, err.Error(), "2")
}
