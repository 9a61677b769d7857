package domain

import "time"

type PatternKind string

const (
	PatternKindFixed    PatternKind = "fixed"
	PatternKindFloating PatternKind = "floating"
)

// AtomicPattern 是一个命名的日工作时间模板
type AtomicPattern struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Kind            PatternKind `json:"kind"`
	StartTime       ClockTime   `json:"startTime"`
	EndTime         ClockTime   `json:"endTime"`
	DurationMinutes int32       `json:"durationMinutes"`
	CreatedAt       time.Time   `json:"createdAt"`
	Version         int32       `json:"-"`
}

// ComputedDuration 根据开始和结束时间重新计算时长，存储的 DurationMinutes 仅供展示
func (p *AtomicPattern) ComputedDuration() int32 {
	minutes, _ := SpanMinutes(p.StartTime, p.EndTime)
	return int32(minutes)
}

type WeekPatternDay struct {
	DayOfWeek     int32      `json:"dayOfWeek"`
	IsWorkingDay  bool       `json:"isWorkingDay"`
	StartTime     *ClockTime `json:"startTime"`
	EndTime       *ClockTime `json:"endTime"`
	WorkPatternID *int64     `json:"workPatternID"`
}

type WeekPattern struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	FloatingStartMinutes int32            `json:"floatingStartMinutes"`
	FloatingEndMinutes   int32            `json:"floatingEndMinutes"`
	Days                 []WeekPatternDay `json:"days"`
	CreatedAt            time.Time        `json:"createdAt"`
	Version              int32            `json:"-"`
}

type ScheduleSlot struct {
	ID                int64      `json:"id"`
	ShiftScheduleID   int64      `json:"shiftScheduleID"`
	DayInCycle        int32      `json:"dayInCycle"`
	WorkPatternID     *int64     `json:"workPatternID"` // 为空时表示该天休息
	OverrideStartTime *ClockTime `json:"overrideStartTime"`
	OverrideEndTime   *ClockTime `json:"overrideEndTime"`
}

type ShiftSchedule struct {
	ID                   int64          `json:"id"`
	Name                 string         `json:"name"`
	CycleLengthDays      int32          `json:"cycleLengthDays"`
	CycleStartDate       Date           `json:"cycleStartDate"`
	IgnoreHolidays       bool           `json:"ignoreHolidays"`
	FloatingStartMinutes int32          `json:"floatingStartMinutes"`
	FloatingEndMinutes   int32          `json:"floatingEndMinutes"`
	Slots                []ScheduleSlot `json:"slots"`
	CreatedAt            time.Time      `json:"createdAt"`
	Version              int32          `json:"-"`
}

const (
	MinCycleLengthDays = 1
	MaxCycleLengthDays = 31
)
