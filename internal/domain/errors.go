package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchedule 用于 errors.Is 判断，所有 *ValidationError 都会匹配它
	ErrInvalidSchedule = errors.New("排班定义不合法")

	ErrInvalidRange = errors.New("日期范围不合法")

	ErrUnassignedSchedule = errors.New("员工没有有效的排班分配")

	ErrScheduleNotFound = errors.New("排班不存在")

	ErrGenerationInProgress = errors.New("该排班已有生成任务正在进行")

	ErrJobNotFound = errors.New("生成任务不存在或已过期")
)

// ValidationError 表示排班定义本身存在数据问题，属于程序或数据完整性错误，不应重试
type ValidationError struct {
	Schedule ScheduleRef
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Schedule.IsZero() {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s 的 %s: %s", e.Schedule, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSchedule }

// RangeError 在开始任何工作之前被返回
type RangeError struct {
	Reason string
}

func (e *RangeError) Error() string { return e.Reason }

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

type UnassignedScheduleError struct {
	EmployeeID int64
}

func (e *UnassignedScheduleError) Error() string {
	return fmt.Sprintf("员工 %d 没有有效的排班分配", e.EmployeeID)
}

func (e *UnassignedScheduleError) Unwrap() error { return ErrUnassignedSchedule }
