package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
)

// snapshot 缓存一次生成过程中用到的排班定义，保证整批使用同一份数据
type snapshot struct {
	reader     ScheduleReader
	catalog    *resolver.Catalog
	holidays   *resolver.HolidaySnapshot
	convention resolver.Convention

	mu      sync.Mutex
	sources map[domain.ScheduleRef]sourceResult
}

type sourceResult struct {
	source resolver.Source
	err    error
}

func newSnapshot(reader ScheduleReader, catalog *resolver.Catalog, holidays *resolver.HolidaySnapshot, convention resolver.Convention) *snapshot {
	return &snapshot{
		reader:     reader,
		catalog:    catalog,
		holidays:   holidays,
		convention: convention,
		sources:    make(map[domain.ScheduleRef]sourceResult),
	}
}

func (s *Scheduler) loadCatalog(ctx context.Context) (*resolver.Catalog, error) {
	patterns, err := s.schedules.GetAllAtomicPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取原子模板失败: %w", err)
	}
	return resolver.NewCatalog(patterns), nil
}

// takeSnapshot 一次性读取原子模板和日期范围内的假日
func (s *Scheduler) takeSnapshot(ctx context.Context, from, to domain.Date) (*snapshot, error) {
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	holidays, err := s.holidays.GetHolidaysBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("读取假日失败: %w", err)
	}

	return newSnapshot(s.schedules, catalog, resolver.NewHolidaySnapshot(holidays), s.parameters.Convention), nil
}

// source 返回 ref 对应的排班源，同一个 ref 只读取一次，错误同样被缓存
func (snap *snapshot) source(ctx context.Context, ref domain.ScheduleRef) (resolver.Source, error) {
	snap.mu.Lock()
	defer snap.mu.Unlock()

	if r, ok := snap.sources[ref]; ok {
		return r.source, r.err
	}

	src, err := snap.load(ctx, ref)
	// ctx 取消导致的错误不缓存
	if ctx.Err() == nil {
		snap.sources[ref] = sourceResult{source: src, err: err}
	}
	return src, err
}

func (snap *snapshot) load(ctx context.Context, ref domain.ScheduleRef) (resolver.Source, error) {
	switch ref.Kind {
	case domain.ScheduleKindWeekPattern:
		wp, err := snap.reader.GetWeekPatternByID(ctx, ref.ID)
		if err != nil {
			return nil, wrapNotFound(ref, err)
		}
		return resolver.NewWeekSource(wp, snap.convention)
	case domain.ScheduleKindShiftSchedule:
		ss, err := snap.reader.GetShiftScheduleByID(ctx, ref.ID)
		if err != nil {
			return nil, wrapNotFound(ref, err)
		}
		return resolver.NewCycleSource(ss, snap.catalog)
	default:
		return nil, &domain.ValidationError{Schedule: ref, Field: "kind", Reason: fmt.Sprintf("未知的排班类型 %q", ref.Kind)}
	}
}

func wrapNotFound(ref domain.ScheduleRef, err error) error {
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return fmt.Errorf("%s: %w", ref, domain.ErrScheduleNotFound)
	}
	return fmt.Errorf("读取排班 %s 失败: %w", ref, err)
}

// resolveEmployees 返回本次生成涉及的员工以及请求中指定但目录里不存在的员工 ID
func (s *Scheduler) resolveEmployees(ctx context.Context, req *domain.GenerationRequest) ([]*domain.Employee, []int64, error) {
	if len(req.EmployeeIDs) == 0 {
		employees, err := s.employees.GetEmployeesBySchedule(ctx, req.Schedule)
		if err != nil {
			return nil, nil, fmt.Errorf("读取排班下的员工失败: %w", err)
		}
		return employees, nil, nil
	}

	ids := dedupe(req.EmployeeIDs)
	employees, err := s.employees.GetEmployeesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("读取员工失败: %w", err)
	}

	found := make(map[int64]bool, len(employees))
	for _, e := range employees {
		found[e.ID] = true
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	return employees, missing, nil
}
