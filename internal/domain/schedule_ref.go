package domain

import (
	"fmt"
)

type ScheduleKind string

const (
	ScheduleKindWeekPattern   ScheduleKind = "week_pattern"
	ScheduleKindShiftSchedule ScheduleKind = "shift_schedule"
)

func (k ScheduleKind) Valid() bool {
	return k == ScheduleKindWeekPattern || k == ScheduleKindShiftSchedule
}

// ScheduleRef 指向一个周模式或轮班表，两张表的 ID 互相独立，因此必须带上类型
type ScheduleRef struct {
	Kind ScheduleKind `json:"kind"`
	ID   int64        `json:"id"`
}

func (r ScheduleRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

func (r ScheduleRef) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}
