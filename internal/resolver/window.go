package resolver

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// Window 是某员工某天最终的应出勤窗口
type Window struct {
	Date                 domain.Date        `json:"date"`
	Source               domain.ScheduleRef `json:"source"`
	IsWorkingDay         bool               `json:"isWorkingDay"`
	OffReason            domain.OffReason   `json:"offReason,omitempty"`
	Start                *domain.ClockTime  `json:"start"`
	End                  *domain.ClockTime  `json:"end"`
	SpansNextDay         bool               `json:"spansNextDay"`
	DurationMinutes      int32              `json:"durationMinutes"`
	FloatingStartMinutes int32              `json:"floatingStartMinutes"`
	FloatingEndMinutes   int32              `json:"floatingEndMinutes"`
	WorkPatternID        *int64             `json:"workPatternID"`
	DayIndex             int32              `json:"dayIndex"`
}

// ResolveWindow 组合排班源、假日和浮动时间，得到某天的最终窗口。
// 对于相同的输入总是返回相同的结果，可以被多个 goroutine 同时调用。
func ResolveWindow(src Source, d domain.Date, calendar HolidayCalendar) (Window, error) {
	raw, err := src.ResolveDayWindow(d)
	if err != nil {
		return Window{}, err
	}

	tolerance := src.Tolerance()
	w := Window{
		Date:                 d,
		Source:               src.Ref(),
		FloatingStartMinutes: tolerance.StartMinutes,
		FloatingEndMinutes:   tolerance.EndMinutes,
		DayIndex:             raw.DayIndex,
	}

	if !raw.IsWorkingDay {
		w.OffReason = domain.OffReasonRestDay
		return w, nil
	}

	// 假日优先于工作日，ignore_holidays 的轮班表（24/7 岗位）除外
	if !src.IgnoresHolidays() && calendar != nil && calendar.IsHoliday(d) {
		w.OffReason = domain.OffReasonHoliday
		return w, nil
	}

	start, end := raw.Start, raw.End
	minutes, spans := domain.SpanMinutes(start, end)

	w.IsWorkingDay = true
	w.Start = &start
	w.End = &end
	w.SpansNextDay = spans
	w.DurationMinutes = int32(minutes)
	w.WorkPatternID = raw.WorkPatternID

	return w, nil
}

// Bounds 返回窗口在 loc 时区下的开始和结束时刻，跨午夜时结束时刻落在次日
func (w Window) Bounds(loc *time.Location) (start, end time.Time, ok bool) {
	if !w.IsWorkingDay || w.Start == nil || w.End == nil {
		return time.Time{}, time.Time{}, false
	}

	start = w.Start.On(w.Date, loc)
	endDate := w.Date
	if w.SpansNextDay {
		endDate = endDate.AddDays(1)
	}
	end = w.End.On(endDate, loc)

	return start, end, true
}

// GraceBounds 返回不算迟到的最晚签到时刻和不算早退的最早签退时刻
func (w Window) GraceBounds(loc *time.Location) (latestCheckIn, earliestCheckOut time.Time, ok bool) {
	start, end, ok := w.Bounds(loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	latestCheckIn = start.Add(time.Duration(w.FloatingStartMinutes) * time.Minute)
	earliestCheckOut = end.Add(-time.Duration(w.FloatingEndMinutes) * time.Minute)

	return latestCheckIn, earliestCheckOut, true
}

// ToShift 把窗口转换为待落库的排班记录
func (w Window) ToShift(employeeID int64) *domain.Shift {
	s := &domain.Shift{
		EmployeeID:           employeeID,
		Date:                 w.Date,
		IsOffDay:             !w.IsWorkingDay,
		OffReason:            w.OffReason,
		SpansNextDay:         w.SpansNextDay,
		DurationMinutes:      w.DurationMinutes,
		FloatingStartMinutes: w.FloatingStartMinutes,
		FloatingEndMinutes:   w.FloatingEndMinutes,
		SourceType:           w.Source.Kind,
		SourceScheduleID:     w.Source.ID,
		WorkPatternID:        copyID(w.WorkPatternID),
	}
	if w.IsWorkingDay {
		s.ExpectedStart = copyClock(w.Start)
		s.ExpectedEnd = copyClock(w.End)
	}
	return s
}

// ResolveRange 依次解析 [from, to] 中的每一天，用于预览
func ResolveRange(src Source, from, to domain.Date, calendar HolidayCalendar) ([]Window, error) {
	windows := make([]Window, 0, domain.DaysInclusive(from, to))
	for d := from; !d.After(to); d = d.AddDays(1) {
		w, err := ResolveWindow(src, d, calendar)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}
