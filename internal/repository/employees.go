package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

const employeeColumns = `id, employee_code, full_name, is_active, week_pattern_id, shift_schedule_id`

func scanEmployees(rows *sql.Rows) ([]*domain.Employee, error) {
	employees := []*domain.Employee{}
	for rows.Next() {
		e := &domain.Employee{}
		dst := []any{&e.ID, &e.EmployeeCode, &e.FullName, &e.IsActive, &e.WeekPatternID, &e.ShiftScheduleID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	e := &domain.Employee{}
	dst := []any{&e.ID, &e.EmployeeCode, &e.FullName, &e.IsActive, &e.WeekPatternID, &e.ShiftScheduleID}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return e, nil
}

// GetEmployeesByIDs 不存在的 ID 会被直接忽略
func (r *Repository) GetEmployeesByIDs(ctx context.Context, ids []int64) ([]*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ANY($1) ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func (r *Repository) GetEmployeesBySchedule(ctx context.Context, ref domain.ScheduleRef) ([]*domain.Employee, error) {
	var column string
	switch ref.Kind {
	case domain.ScheduleKindWeekPattern:
		column = "week_pattern_id"
	case domain.ScheduleKindShiftSchedule:
		column = "shift_schedule_id"
	default:
		return nil, fmt.Errorf("未知的排班类型 %q", ref.Kind)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE is_active AND ` + column + ` = $1 ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func (r *Repository) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (employee_code, full_name, is_active, week_pattern_id, shift_schedule_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{e.EmployeeCode, e.FullName, e.IsActive, e.WeekPatternID, e.ShiftScheduleID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		return err
	}

	return nil
}
