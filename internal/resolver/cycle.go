package resolver

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/utils"
)

// DayInCycle 返回 d 在以 start 为起点、长度为 n 的轮班周期中的位置（从 1 开始）。
// d 早于 start 时同样按周期向前回绕。
func DayInCycle(start, d domain.Date, n int32) int32 {
	offset := d.DaysSince(start)
	length := int(n)
	return int32(((offset%length)+length)%length + 1)
}

type cycleSlot struct {
	workPatternID *int64
	overrideStart *domain.ClockTime
	overrideEnd   *domain.ClockTime
}

// CycleSource 按 N 天轮班解析
type CycleSource struct {
	id             int64
	cycleLength    int32
	cycleStart     domain.Date
	ignoreHolidays bool
	tolerance      Tolerance
	slots          []cycleSlot // 下标为 day_in_cycle - 1
	catalog        *Catalog
}

func NewCycleSource(ss *domain.ShiftSchedule, catalog *Catalog) (*CycleSource, error) {
	if err := utils.ValidateShiftSchedule(ss); err != nil {
		return nil, err
	}

	cs := &CycleSource{
		id:             ss.ID,
		cycleLength:    ss.CycleLengthDays,
		cycleStart:     ss.CycleStartDate,
		ignoreHolidays: ss.IgnoreHolidays,
		tolerance: Tolerance{
			StartMinutes: ss.FloatingStartMinutes,
			EndMinutes:   ss.FloatingEndMinutes,
		},
		slots:   make([]cycleSlot, ss.CycleLengthDays),
		catalog: catalog,
	}

	for _, slot := range ss.Slots {
		cs.slots[slot.DayInCycle-1] = cycleSlot{
			workPatternID: copyID(slot.WorkPatternID),
			overrideStart: copyClock(slot.OverrideStartTime),
			overrideEnd:   copyClock(slot.OverrideEndTime),
		}
	}

	return cs, nil
}

func (cs *CycleSource) Ref() domain.ScheduleRef {
	return domain.ScheduleRef{Kind: domain.ScheduleKindShiftSchedule, ID: cs.id}
}

func (cs *CycleSource) IgnoresHolidays() bool { return cs.ignoreHolidays }

func (cs *CycleSource) Tolerance() Tolerance { return cs.tolerance }

func (cs *CycleSource) DayInCycle(d domain.Date) int32 {
	return DayInCycle(cs.cycleStart, d, cs.cycleLength)
}

func (cs *CycleSource) ResolveDayWindow(d domain.Date) (DayWindow, error) {
	dayInCycle := cs.DayInCycle(d)
	slot := cs.slots[dayInCycle-1]

	// 休息日上残留的覆盖时间一律忽略
	if slot.workPatternID == nil {
		return DayWindow{IsWorkingDay: false, DayIndex: dayInCycle}, nil
	}

	pattern, ok := cs.catalog.Get(*slot.workPatternID)
	if !ok {
		return DayWindow{}, &domain.ValidationError{
			Schedule: cs.Ref(),
			Field:    "workPatternID",
			Reason:   fmt.Sprintf("第 %d 天引用的原子模板 %d 不存在", dayInCycle, *slot.workPatternID),
		}
	}

	window := DayWindow{
		IsWorkingDay:  true,
		Start:         pattern.StartTime,
		End:           pattern.EndTime,
		WorkPatternID: copyID(slot.workPatternID),
		DayIndex:      dayInCycle,
	}
	// 开始和结束各自独立覆盖
	if slot.overrideStart != nil {
		window.Start = *slot.overrideStart
	}
	if slot.overrideEnd != nil {
		window.End = *slot.overrideEnd
	}

	return window, nil
}

// ResolveCycleDay 是不经过快照的单次解析
func ResolveCycleDay(ss *domain.ShiftSchedule, catalog *Catalog, d domain.Date) (DayWindow, error) {
	cs, err := NewCycleSource(ss, catalog)
	if err != nil {
		return DayWindow{}, err
	}
	return cs.ResolveDayWindow(d)
}
