package scheduler

import (
	"context"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
)

// 生成参数
type Parameters struct {
	Concurrency  int // 同时解析的员工数
	BatchSize    int // 每次批量写入的排班条数
	MaxRangeDays int // 单次生成允许的最大天数，<= 0 表示不限制
	Convention   resolver.Convention
}

type EmployeeDirectory interface {
	GetEmployeesByIDs(ctx context.Context, ids []int64) ([]*domain.Employee, error)
	// GetEmployeesBySchedule 只返回当前分配在该排班下的在职员工
	GetEmployeesBySchedule(ctx context.Context, ref domain.ScheduleRef) ([]*domain.Employee, error)
}

type ScheduleReader interface {
	GetWeekPatternByID(ctx context.Context, id int64) (*domain.WeekPattern, error)
	GetShiftScheduleByID(ctx context.Context, id int64) (*domain.ShiftSchedule, error)
	GetAllAtomicPatterns(ctx context.Context) ([]*domain.AtomicPattern, error)
}

type HolidayReader interface {
	GetHolidaysBetween(ctx context.Context, from, to domain.Date) ([]domain.Holiday, error)
}

type ShiftWriter interface {
	// UpsertShifts 按 (employee_id, date) 覆盖写入，整批要么全部成功要么全部失败
	UpsertShifts(ctx context.Context, shifts []*domain.Shift) error
	CountShifts(ctx context.Context, employeeIDs []int64, from, to domain.Date) (int64, error)
}

// task: 一名员工在整个日期范围内的解析任务
type task struct {
	employeeID int64
	source     resolver.Source
}

// outcome: 一个 (员工, 日期) 的解析结果，shift 和 failure 恰好有一个不为 nil
type outcome struct {
	shift   *domain.Shift
	failure *domain.GenerationFailure
}
