package resolver

import (
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/utils"
)

// WeekSource 按固定的周节奏解析
type WeekSource struct {
	id         int64
	convention Convention
	tolerance  Tolerance
	days       [7]domain.WeekPatternDay
}

func NewWeekSource(wp *domain.WeekPattern, convention Convention) (*WeekSource, error) {
	if err := utils.ValidateWeekPattern(wp); err != nil {
		return nil, err
	}

	ws := &WeekSource{
		id:         wp.ID,
		convention: convention,
		tolerance: Tolerance{
			StartMinutes: wp.FloatingStartMinutes,
			EndMinutes:   wp.FloatingEndMinutes,
		},
	}
	for _, day := range wp.Days {
		ws.days[day.DayOfWeek] = domain.WeekPatternDay{
			DayOfWeek:     day.DayOfWeek,
			IsWorkingDay:  day.IsWorkingDay,
			StartTime:     copyClock(day.StartTime),
			EndTime:       copyClock(day.EndTime),
			WorkPatternID: copyID(day.WorkPatternID),
		}
	}

	return ws, nil
}

func (ws *WeekSource) Ref() domain.ScheduleRef {
	return domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: ws.id}
}

// 周模式一律遵守假日
func (ws *WeekSource) IgnoresHolidays() bool { return false }

func (ws *WeekSource) Tolerance() Tolerance { return ws.tolerance }

func (ws *WeekSource) ResolveDayWindow(d domain.Date) (DayWindow, error) {
	index := ws.convention.DayIndex(d)
	day := ws.days[index]

	if !day.IsWorkingDay {
		return DayWindow{IsWorkingDay: false, DayIndex: index}, nil
	}

	return DayWindow{
		IsWorkingDay:  true,
		Start:         *day.StartTime,
		End:           *day.EndTime,
		WorkPatternID: copyID(day.WorkPatternID),
		DayIndex:      index,
	}, nil
}

// ResolveWeekDay 是不经过快照的单次解析
func ResolveWeekDay(wp *domain.WeekPattern, d domain.Date, convention Convention) (DayWindow, error) {
	ws, err := NewWeekSource(wp, convention)
	if err != nil {
		return DayWindow{}, err
	}
	return ws.ResolveDayWindow(d)
}
