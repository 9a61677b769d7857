package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

func ValidateAtomicPattern(p *domain.AtomicPattern) error {
	if p.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "模板名称不能为空"}
	}
	if p.Kind != domain.PatternKindFixed && p.Kind != domain.PatternKindFloating {
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("未知的模板类型 %q", p.Kind)}
	}
	if !p.StartTime.Valid() || !p.EndTime.Valid() {
		return &domain.ValidationError{Field: "startTime/endTime", Reason: "时间超出 00:00-23:59"}
	}
	return nil
}

// ValidateWeekPattern 检查周模式是否恰好有 7 天，且每天的时间字段与是否上班一致。
// 结束时间不晚于开始时间时按跨午夜处理，因此不视为错误。
func ValidateWeekPattern(wp *domain.WeekPattern) error {
	ref := domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: wp.ID}

	if len(wp.Days) != 7 {
		return &domain.ValidationError{Schedule: ref, Field: "days", Reason: fmt.Sprintf("需要 7 天，实际为 %d 天", len(wp.Days))}
	}
	if wp.FloatingStartMinutes < 0 || wp.FloatingEndMinutes < 0 {
		return &domain.ValidationError{Schedule: ref, Field: "floating", Reason: "浮动时间不能为负数"}
	}

	seen := make(map[int32]bool)
	for _, day := range wp.Days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return &domain.ValidationError{Schedule: ref, Field: "dayOfWeek", Reason: fmt.Sprintf("星期 %d 超出 0-6", day.DayOfWeek)}
		}
		if seen[day.DayOfWeek] {
			return &domain.ValidationError{Schedule: ref, Field: "dayOfWeek", Reason: fmt.Sprintf("星期 %d 重复", day.DayOfWeek)}
		}
		seen[day.DayOfWeek] = true

		if !day.IsWorkingDay {
			if day.StartTime != nil || day.EndTime != nil {
				return &domain.ValidationError{Schedule: ref, Field: "days", Reason: fmt.Sprintf("星期 %d 为休息日但设置了时间", day.DayOfWeek)}
			}
			continue
		}

		if day.StartTime == nil || day.EndTime == nil {
			return &domain.ValidationError{Schedule: ref, Field: "days", Reason: fmt.Sprintf("星期 %d 为工作日但缺少开始或结束时间", day.DayOfWeek)}
		}
		if !day.StartTime.Valid() || !day.EndTime.Valid() {
			return &domain.ValidationError{Schedule: ref, Field: "days", Reason: fmt.Sprintf("星期 %d 的时间超出范围", day.DayOfWeek)}
		}
	}

	return nil
}

func ValidateCycleLength(n int32) error {
	if n < domain.MinCycleLengthDays || n > domain.MaxCycleLengthDays {
		return &domain.RangeError{Reason: fmt.Sprintf("轮班周期 %d 天超出 %d-%d", n, domain.MinCycleLengthDays, domain.MaxCycleLengthDays)}
	}
	return nil
}

// ValidateShiftSchedule 检查 day_in_cycle 恰好覆盖 1..cycle_length_days 且没有重复或缺失
func ValidateShiftSchedule(ss *domain.ShiftSchedule) error {
	ref := domain.ScheduleRef{Kind: domain.ScheduleKindShiftSchedule, ID: ss.ID}

	if err := ValidateCycleLength(ss.CycleLengthDays); err != nil {
		return err
	}
	if ss.CycleStartDate.IsZero() {
		return &domain.ValidationError{Schedule: ref, Field: "cycleStartDate", Reason: "轮班起始日期不能为空"}
	}
	if ss.FloatingStartMinutes < 0 || ss.FloatingEndMinutes < 0 {
		return &domain.ValidationError{Schedule: ref, Field: "floating", Reason: "浮动时间不能为负数"}
	}
	if len(ss.Slots) != int(ss.CycleLengthDays) {
		return &domain.ValidationError{Schedule: ref, Field: "slots", Reason: fmt.Sprintf("需要 %d 个班位，实际为 %d 个", ss.CycleLengthDays, len(ss.Slots))}
	}

	seen := make(map[int32]bool)
	for _, slot := range ss.Slots {
		if slot.DayInCycle < 1 || slot.DayInCycle > ss.CycleLengthDays {
			return &domain.ValidationError{Schedule: ref, Field: "dayInCycle", Reason: fmt.Sprintf("第 %d 天超出 1-%d", slot.DayInCycle, ss.CycleLengthDays)}
		}
		if seen[slot.DayInCycle] {
			return &domain.ValidationError{Schedule: ref, Field: "dayInCycle", Reason: fmt.Sprintf("第 %d 天重复", slot.DayInCycle)}
		}
		seen[slot.DayInCycle] = true

		if slot.OverrideStartTime != nil && !slot.OverrideStartTime.Valid() {
			return &domain.ValidationError{Schedule: ref, Field: "overrideStartTime", Reason: fmt.Sprintf("第 %d 天的覆盖开始时间超出范围", slot.DayInCycle)}
		}
		if slot.OverrideEndTime != nil && !slot.OverrideEndTime.Valid() {
			return &domain.ValidationError{Schedule: ref, Field: "overrideEndTime", Reason: fmt.Sprintf("第 %d 天的覆盖结束时间超出范围", slot.DayInCycle)}
		}
	}

	return nil
}

// ValidateDateRange 检查生成范围，maxDays <= 0 表示不限制
func ValidateDateRange(start, end domain.Date, maxDays int) error {
	if start.IsZero() || end.IsZero() {
		return &domain.RangeError{Reason: "开始日期和结束日期不能为空"}
	}
	if start.After(end) {
		return &domain.RangeError{Reason: fmt.Sprintf("开始日期 %s 晚于结束日期 %s", start, end)}
	}
	if maxDays > 0 && domain.DaysInclusive(start, end) > maxDays {
		return &domain.RangeError{Reason: fmt.Sprintf("日期范围超过 %d 天", maxDays)}
	}
	return nil
}

// NormalizeSlots 清除休息日上残留的覆盖时间，写入前调用
func NormalizeSlots(ss *domain.ShiftSchedule) {
	for i := range ss.Slots {
		if ss.Slots[i].WorkPatternID == nil {
			ss.Slots[i].OverrideStartTime = nil
			ss.Slots[i].OverrideEndTime = nil
		}
	}
}
