package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

func clock(s string) *domain.ClockTime {
	c := domain.MustClockTime(s)
	return &c
}

func id(v int64) *int64 { return &v }

func standardWeek() *domain.WeekPattern {
	wp := &domain.WeekPattern{ID: 1, Name: "Standard", FloatingStartMinutes: 15}
	for d := int32(0); d < 7; d++ {
		day := domain.WeekPatternDay{DayOfWeek: d}
		if d < 5 {
			day.IsWorkingDay = true
			day.StartTime = clock("08:00")
			day.EndTime = clock("16:00")
		}
		wp.Days = append(wp.Days, day)
	}
	return wp
}

func TestValidateWeekPattern(t *testing.T) {
	require.NoError(t, ValidateWeekPattern(standardWeek()))

	wp := standardWeek()
	wp.Days = wp.Days[:6]
	err := ValidateWeekPattern(wp)
	assert.True(t, errors.Is(err, domain.ErrInvalidSchedule))

	wp = standardWeek()
	wp.Days[6].DayOfWeek = 0
	assert.Error(t, ValidateWeekPattern(wp))

	wp = standardWeek()
	wp.Days[5].StartTime = clock("09:00")
	assert.Error(t, ValidateWeekPattern(wp), "休息日不能带时间")

	wp = standardWeek()
	wp.Days[0].EndTime = nil
	assert.Error(t, ValidateWeekPattern(wp), "工作日必须有结束时间")

	wp = standardWeek()
	wp.Days[0].StartTime = clock("22:00")
	wp.Days[0].EndTime = clock("06:00")
	assert.NoError(t, ValidateWeekPattern(wp), "跨午夜是合法的")
}

func rotation() *domain.ShiftSchedule {
	return &domain.ShiftSchedule{
		ID:              3,
		Name:            "4-on/2-off",
		CycleLengthDays: 3,
		CycleStartDate:  domain.MustDate("2024-01-01"),
		Slots: []domain.ScheduleSlot{
			{DayInCycle: 1, WorkPatternID: id(1)},
			{DayInCycle: 2, WorkPatternID: id(1), OverrideStartTime: clock("09:00")},
			{DayInCycle: 3},
		},
	}
}

func TestValidateShiftSchedule(t *testing.T) {
	require.NoError(t, ValidateShiftSchedule(rotation()))

	ss := rotation()
	ss.Slots[2].DayInCycle = 4
	assert.True(t, errors.Is(ValidateShiftSchedule(ss), domain.ErrInvalidSchedule))

	ss = rotation()
	ss.Slots[2].DayInCycle = 2
	assert.Error(t, ValidateShiftSchedule(ss))

	ss = rotation()
	ss.Slots = ss.Slots[:2]
	assert.Error(t, ValidateShiftSchedule(ss))

	ss = rotation()
	ss.CycleLengthDays = 32
	assert.True(t, errors.Is(ValidateShiftSchedule(ss), domain.ErrInvalidRange))

	ss = rotation()
	ss.CycleLengthDays = 0
	assert.True(t, errors.Is(ValidateShiftSchedule(ss), domain.ErrInvalidRange))
}

func TestValidateDateRange(t *testing.T) {
	start := domain.MustDate("2024-03-01")

	assert.NoError(t, ValidateDateRange(start, start, 0))
	assert.NoError(t, ValidateDateRange(start, start.AddDays(365), 366))

	err := ValidateDateRange(start, start.AddDays(-1), 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidRange))

	err = ValidateDateRange(start, start.AddDays(366), 366)
	assert.True(t, errors.Is(err, domain.ErrInvalidRange))

	assert.Error(t, ValidateDateRange(domain.Date{}, start, 0))
}

func TestNormalizeSlots(t *testing.T) {
	ss := rotation()
	ss.Slots[2].OverrideStartTime = clock("07:00")
	ss.Slots[2].OverrideEndTime = clock("15:00")

	NormalizeSlots(ss)

	assert.Nil(t, ss.Slots[2].OverrideStartTime)
	assert.Nil(t, ss.Slots[2].OverrideEndTime)
	assert.NotNil(t, ss.Slots[1].OverrideStartTime, "工作日的覆盖时间保持不变")
}

func TestValidateAtomicPattern(t *testing.T) {
	p := &domain.AtomicPattern{Name: "Day", Kind: domain.PatternKindFixed, StartTime: domain.MustClockTime("08:00"), EndTime: domain.MustClockTime("16:00")}
	assert.NoError(t, ValidateAtomicPattern(p))

	p.Kind = "rotating"
	assert.Error(t, ValidateAtomicPattern(p))
}
