package domain

import "time"

type OffReason string

const (
	OffReasonNone    OffReason = ""
	OffReasonRestDay OffReason = "rest_day"
	OffReasonHoliday OffReason = "holiday"
)

// Shift 是生成后的某员工某天的应出勤窗口，(EmployeeID, Date) 唯一
type Shift struct {
	ID                   int64        `json:"id"`
	EmployeeID           int64        `json:"employeeID"`
	Date                 Date         `json:"date"`
	IsOffDay             bool         `json:"isOffDay"`
	OffReason            OffReason    `json:"offReason,omitempty"`
	ExpectedStart        *ClockTime   `json:"expectedStart"`
	ExpectedEnd          *ClockTime   `json:"expectedEnd"`
	SpansNextDay         bool         `json:"spansNextDay"`
	DurationMinutes      int32        `json:"durationMinutes"`
	FloatingStartMinutes int32        `json:"floatingStartMinutes"`
	FloatingEndMinutes   int32        `json:"floatingEndMinutes"`
	SourceType           ScheduleKind `json:"sourceType"`
	SourceScheduleID     int64        `json:"sourceScheduleID"`
	WorkPatternID        *int64       `json:"workPatternID"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}
