package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

const weekPatternSelect = `
	SELECT
		wp.id,
		wp.name,
		wp.floating_start_minutes,
		wp.floating_end_minutes,
		wp.created_at,
		wp.version,
		wpd.day_of_week,
		wpd.is_working_day,
		wpd.start_time,
		wpd.end_time,
		wpd.work_pattern_id
	FROM week_patterns wp
	LEFT JOIN week_pattern_days wpd ON wp.id = wpd.week_pattern_id
`

// scanWeekPatterns 把 LEFT JOIN 得到的行组装为周模式，保持查询返回的顺序
func scanWeekPatterns(rows *sql.Rows) ([]*domain.WeekPattern, error) {
	patternsMap := make(map[int64]*domain.WeekPattern)
	patterns := []*domain.WeekPattern{}

	for rows.Next() {
		var row struct {
			ID                   int64
			Name                 string
			FloatingStartMinutes int32
			FloatingEndMinutes   int32
			CreatedAt            time.Time
			Version              int32

			DayOfWeek     sql.NullInt32
			IsWorkingDay  sql.NullBool
			StartTime     *domain.ClockTime
			EndTime       *domain.ClockTime
			WorkPatternID *int64
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.FloatingStartMinutes,
			&row.FloatingEndMinutes,
			&row.CreatedAt,
			&row.Version,
			&row.DayOfWeek,
			&row.IsWorkingDay,
			&row.StartTime,
			&row.EndTime,
			&row.WorkPatternID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		wp, exists := patternsMap[row.ID]
		if !exists {
			wp = &domain.WeekPattern{
				ID:                   row.ID,
				Name:                 row.Name,
				FloatingStartMinutes: row.FloatingStartMinutes,
				FloatingEndMinutes:   row.FloatingEndMinutes,
				Days:                 make([]domain.WeekPatternDay, 0, 7),
				CreatedAt:            row.CreatedAt,
				Version:              row.Version,
			}
			patternsMap[row.ID] = wp
			patterns = append(patterns, wp)
		}

		// 没有任何天的周模式，交给解析时的校验处理
		if !row.DayOfWeek.Valid {
			continue
		}

		wp.Days = append(wp.Days, domain.WeekPatternDay{
			DayOfWeek:     row.DayOfWeek.Int32,
			IsWorkingDay:  row.IsWorkingDay.Bool,
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			WorkPatternID: row.WorkPatternID,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

func (r *Repository) GetAllWeekPatterns(ctx context.Context) ([]*domain.WeekPattern, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, weekPatternSelect+` ORDER BY wp.id, wpd.day_of_week`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWeekPatterns(rows)
}

// GetWeekPatternByID 找不到时返回 domain.ErrScheduleNotFound
func (r *Repository) GetWeekPatternByID(ctx context.Context, id int64) (*domain.WeekPattern, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, weekPatternSelect+` WHERE wp.id = $1 ORDER BY wpd.day_of_week`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns, err := scanWeekPatterns(rows)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, domain.ErrScheduleNotFound
	}

	return patterns[0], nil
}

func (r *Repository) CreateWeekPattern(ctx context.Context, wp *domain.WeekPattern) error {
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
		INSERT INTO week_patterns (name, floating_start_minutes, floating_end_minutes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	args := []any{wp.Name, wp.FloatingStartMinutes, wp.FloatingEndMinutes}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&wp.ID, &wp.CreatedAt, &wp.Version); err != nil {
		return err
	}

	for _, day := range wp.Days {
		query = `
			INSERT INTO week_pattern_days (week_pattern_id, day_of_week, is_working_day, start_time, end_time, work_pattern_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		args := []any{wp.ID, day.DayOfWeek, day.IsWorkingDay, day.StartTime, day.EndTime, day.WorkPatternID}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetWeekPatternByName(ctx context.Context, name string) (*domain.WeekPattern, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT id FROM week_patterns WHERE name = $1`, name).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}

	return r.GetWeekPatternByID(ctx, id)
}
