package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/utils"
)

const shiftScheduleSelect = `
	SELECT
		ss.id,
		ss.name,
		ss.cycle_length_days,
		ss.cycle_start_date,
		ss.ignore_holidays,
		ss.floating_start_minutes,
		ss.floating_end_minutes,
		ss.created_at,
		ss.version,
		sl.id,
		sl.day_in_cycle,
		sl.work_pattern_id,
		sl.override_start_time,
		sl.override_end_time
	FROM shift_schedules ss
	LEFT JOIN schedule_slots sl ON ss.id = sl.shift_schedule_id
`

func scanShiftSchedules(rows *sql.Rows) ([]*domain.ShiftSchedule, error) {
	schedulesMap := make(map[int64]*domain.ShiftSchedule)
	schedules := []*domain.ShiftSchedule{}

	for rows.Next() {
		var row struct {
			ID                   int64
			Name                 string
			CycleLengthDays      int32
			CycleStartDate       domain.Date
			IgnoreHolidays       bool
			FloatingStartMinutes int32
			FloatingEndMinutes   int32
			CreatedAt            time.Time
			Version              int32

			SlotID            sql.NullInt64
			DayInCycle        sql.NullInt32
			WorkPatternID     *int64
			OverrideStartTime *domain.ClockTime
			OverrideEndTime   *domain.ClockTime
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.CycleLengthDays,
			&row.CycleStartDate,
			&row.IgnoreHolidays,
			&row.FloatingStartMinutes,
			&row.FloatingEndMinutes,
			&row.CreatedAt,
			&row.Version,
			&row.SlotID,
			&row.DayInCycle,
			&row.WorkPatternID,
			&row.OverrideStartTime,
			&row.OverrideEndTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		ss, exists := schedulesMap[row.ID]
		if !exists {
			ss = &domain.ShiftSchedule{
				ID:                   row.ID,
				Name:                 row.Name,
				CycleLengthDays:      row.CycleLengthDays,
				CycleStartDate:       row.CycleStartDate,
				IgnoreHolidays:       row.IgnoreHolidays,
				FloatingStartMinutes: row.FloatingStartMinutes,
				FloatingEndMinutes:   row.FloatingEndMinutes,
				Slots:                make([]domain.ScheduleSlot, 0, row.CycleLengthDays),
				CreatedAt:            row.CreatedAt,
				Version:              row.Version,
			}
			schedulesMap[row.ID] = ss
			schedules = append(schedules, ss)
		}

		if !row.SlotID.Valid {
			continue
		}

		ss.Slots = append(ss.Slots, domain.ScheduleSlot{
			ID:                row.SlotID.Int64,
			ShiftScheduleID:   row.ID,
			DayInCycle:        row.DayInCycle.Int32,
			WorkPatternID:     row.WorkPatternID,
			OverrideStartTime: row.OverrideStartTime,
			OverrideEndTime:   row.OverrideEndTime,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) GetAllShiftSchedules(ctx context.Context) ([]*domain.ShiftSchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, shiftScheduleSelect+` ORDER BY ss.id, sl.day_in_cycle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShiftSchedules(rows)
}

// GetShiftScheduleByID 找不到时返回 domain.ErrScheduleNotFound
func (r *Repository) GetShiftScheduleByID(ctx context.Context, id int64) (*domain.ShiftSchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, shiftScheduleSelect+` WHERE ss.id = $1 ORDER BY sl.day_in_cycle`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules, err := scanShiftSchedules(rows)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, domain.ErrScheduleNotFound
	}

	return schedules[0], nil
}

func (r *Repository) GetShiftScheduleByName(ctx context.Context, name string) (*domain.ShiftSchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT id FROM shift_schedules WHERE name = $1`, name).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}

	return r.GetShiftScheduleByID(ctx, id)
}

// CreateShiftSchedule 在同一个事务中写入轮班表和所有班位，休息日上的覆盖时间在写入前被清除
func (r *Repository) CreateShiftSchedule(ctx context.Context, ss *domain.ShiftSchedule) error {
	utils.NormalizeSlots(ss)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shift_schedules (name, cycle_length_days, cycle_start_date, ignore_holidays, floating_start_minutes, floating_end_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`
	args := []any{ss.Name, ss.CycleLengthDays, ss.CycleStartDate, ss.IgnoreHolidays, ss.FloatingStartMinutes, ss.FloatingEndMinutes}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&ss.ID, &ss.CreatedAt, &ss.Version); err != nil {
		return err
	}

	for i := range ss.Slots {
		query = `
			INSERT INTO schedule_slots (shift_schedule_id, day_in_cycle, work_pattern_id, override_start_time, override_end_time)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		slot := &ss.Slots[i]
		args := []any{ss.ID, slot.DayInCycle, slot.WorkPatternID, slot.OverrideStartTime, slot.OverrideEndTime}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&slot.ID); err != nil {
			return err
		}
		slot.ShiftScheduleID = ss.ID
	}

	return tx.Commit()
}
