package resolver

import (
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// DayWindow 是排班源对某一天给出的原始结果，尚未考虑假日和跨午夜
type DayWindow struct {
	IsWorkingDay  bool
	Start         domain.ClockTime
	End           domain.ClockTime
	WorkPatternID *int64
	// 周模式下为 day_of_week，轮班表下为 day_in_cycle
	DayIndex int32
}

type Tolerance struct {
	StartMinutes int32
	EndMinutes   int32
}

// Source 是周模式和轮班表的共同能力，实现必须是只读快照，可以被并发调用
type Source interface {
	Ref() domain.ScheduleRef
	ResolveDayWindow(d domain.Date) (DayWindow, error)
	IgnoresHolidays() bool
	Tolerance() Tolerance
}

func copyClock(c *domain.ClockTime) *domain.ClockTime {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
