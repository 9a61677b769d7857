package domain

// Employee 来自外部的员工目录，这里只读取排班分配相关的字段
type Employee struct {
	ID              int64  `json:"id"`
	EmployeeCode    string `json:"employeeCode"`
	FullName        string `json:"fullName"`
	IsActive        bool   `json:"isActive"`
	WeekPatternID   *int64 `json:"weekPatternID"`
	ShiftScheduleID *int64 `json:"shiftScheduleID"`
}

// Assignment 返回员工当前的排班，两个外键互斥；都为空或都不为空时视为没有有效分配
func (e *Employee) Assignment() (ScheduleRef, bool) {
	switch {
	case e.WeekPatternID != nil && e.ShiftScheduleID == nil:
		return ScheduleRef{Kind: ScheduleKindWeekPattern, ID: *e.WeekPatternID}, true
	case e.ShiftScheduleID != nil && e.WeekPatternID == nil:
		return ScheduleRef{Kind: ScheduleKindShiftSchedule, ID: *e.ShiftScheduleID}, true
	default:
		return ScheduleRef{}, false
	}
}
