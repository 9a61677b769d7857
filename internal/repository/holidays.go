package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// GetHolidaysBetween 返回闭区间 [from, to] 内的所有假日，包括协议假日
func (r *Repository) GetHolidaysBetween(ctx context.Context, from, to domain.Date) ([]domain.Holiday, error) {
	query := `
		SELECT date, name, is_official
		FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, is_official DESC
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []domain.Holiday{}
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.Date, &h.Name, &h.IsOfficial); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

// UpsertHoliday 以 (date, name) 为键，重复导入只会更新 is_official
func (r *Repository) UpsertHoliday(ctx context.Context, h *domain.Holiday) error {
	query := `
		INSERT INTO holidays (date, name, is_official)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT holidays_date_name_key
		DO UPDATE SET is_official = EXCLUDED.is_official
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, h.Date, h.Name, h.IsOfficial)
	return err
}
