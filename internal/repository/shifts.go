package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

var shiftInsertColumns = []string{
	"employee_id",
	"date",
	"is_off_day",
	"off_reason",
	"expected_start",
	"expected_end",
	"spans_next_day",
	"duration_minutes",
	"floating_start_minutes",
	"floating_end_minutes",
	"source_type",
	"source_schedule_id",
	"work_pattern_id",
}

// UpsertShifts 用一条多行 INSERT ... ON CONFLICT 覆盖写入整批排班，
// 同一批中不能出现重复的 (employee_id, date)
func (r *Repository) UpsertShifts(ctx context.Context, shifts []*domain.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO shifts (")
	sb.WriteString(strings.Join(shiftInsertColumns, ", "))
	sb.WriteString(", updated_at) VALUES ")

	n := len(shiftInsertColumns)
	args := make([]any, 0, len(shifts)*n)
	for i, s := range shifts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < n; j++ {
			fmt.Fprintf(&sb, "$%d, ", i*n+j+1)
		}
		sb.WriteString("NOW())")

		args = append(args,
			s.EmployeeID,
			s.Date,
			s.IsOffDay,
			string(s.OffReason),
			s.ExpectedStart,
			s.ExpectedEnd,
			s.SpansNextDay,
			s.DurationMinutes,
			s.FloatingStartMinutes,
			s.FloatingEndMinutes,
			string(s.SourceType),
			s.SourceScheduleID,
			s.WorkPatternID,
		)
	}

	sb.WriteString(" ON CONFLICT ON CONSTRAINT shifts_employee_date_key DO UPDATE SET ")
	updates := make([]string, 0, n)
	for _, column := range shiftInsertColumns[2:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}
	updates = append(updates, "updated_at = EXCLUDED.updated_at")
	sb.WriteString(strings.Join(updates, ", "))

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return err
	}

	return tx.Commit()
}

// CountShifts 统计将被覆盖的已有排班数
func (r *Repository) CountShifts(ctx context.Context, employeeIDs []int64, from, to domain.Date) (int64, error) {
	query := `
		SELECT COUNT(*) FROM shifts
		WHERE employee_id = ANY($1) AND date BETWEEN $2 AND $3
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var count int64
	if err := r.dbpool.QueryRowContext(ctx, query, employeeIDs, from, to).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) GetShiftsByEmployee(ctx context.Context, employeeID int64, from, to domain.Date) ([]*domain.Shift, error) {
	query := `
		SELECT
			id, date, is_off_day, off_reason, expected_start, expected_end, spans_next_day,
			duration_minutes, floating_start_minutes, floating_end_minutes,
			source_type, source_schedule_id, work_pattern_id, updated_at
		FROM shifts
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.Shift{}
	for rows.Next() {
		s := &domain.Shift{EmployeeID: employeeID}
		dst := []any{
			&s.ID,
			&s.Date,
			&s.IsOffDay,
			&s.OffReason,
			&s.ExpectedStart,
			&s.ExpectedEnd,
			&s.SpansNextDay,
			&s.DurationMinutes,
			&s.FloatingStartMinutes,
			&s.FloatingEndMinutes,
			&s.SourceType,
			&s.SourceScheduleID,
			&s.WorkPatternID,
			&s.UpdatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}
