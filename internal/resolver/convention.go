package resolver

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// Convention 决定 week_pattern_days.day_of_week 中的整数对应哪一天。
// day_of_week = 0 对应 WeekStart，其余按顺序递增。
type Convention struct {
	WeekStart time.Weekday
}

// PersianWeek 是默认约定：周六为 0，周五为 6
var PersianWeek = Convention{WeekStart: time.Saturday}

func (c Convention) DayIndex(d domain.Date) int32 {
	return int32((int(d.Weekday()) - int(c.WeekStart) + 7) % 7)
}

func (c Convention) Weekday(index int32) time.Weekday {
	return time.Weekday((int(c.WeekStart) + int(index)) % 7)
}
