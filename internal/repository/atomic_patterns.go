package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

func (r *Repository) GetAllAtomicPatterns(ctx context.Context) ([]*domain.AtomicPattern, error) {
	query := `
		SELECT id, name, kind, start_time, end_time, duration_minutes, created_at, version
		FROM atomic_patterns
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := []*domain.AtomicPattern{}
	for rows.Next() {
		p := &domain.AtomicPattern{}
		dst := []any{&p.ID, &p.Name, &p.Kind, &p.StartTime, &p.EndTime, &p.DurationMinutes, &p.CreatedAt, &p.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

func (r *Repository) GetAtomicPatternByID(ctx context.Context, id int64) (*domain.AtomicPattern, error) {
	query := `
		SELECT name, kind, start_time, end_time, duration_minutes, created_at, version
		FROM atomic_patterns WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p := &domain.AtomicPattern{ID: id}
	dst := []any{&p.Name, &p.Kind, &p.StartTime, &p.EndTime, &p.DurationMinutes, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return p, nil
}

// CreateAtomicPattern 写入时总是使用重新计算的时长
func (r *Repository) CreateAtomicPattern(ctx context.Context, p *domain.AtomicPattern) error {
	query := `
		INSERT INTO atomic_patterns (name, kind, start_time, end_time, duration_minutes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p.DurationMinutes = p.ComputedDuration()
	args := []any{p.Name, p.Kind, p.StartTime, p.EndTime, p.DurationMinutes}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
		return err
	}

	return nil
}
