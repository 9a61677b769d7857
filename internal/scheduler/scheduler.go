package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/utils"
	"golang.org/x/sync/errgroup"
)

type Scheduler struct {
	parameters *Parameters
	employees  EmployeeDirectory
	schedules  ScheduleReader
	holidays   HolidayReader
	shifts     ShiftWriter
}

func New(parameters *Parameters, employees EmployeeDirectory, schedules ScheduleReader, holidays HolidayReader, shifts ShiftWriter) *Scheduler {
	p := *parameters
	if p.Concurrency <= 0 {
		p.Concurrency = 1
	}
	if p.BatchSize <= 0 {
		p.BatchSize = 1
	}

	return &Scheduler{
		parameters: &p,
		employees:  employees,
		schedules:  schedules,
		holidays:   holidays,
		shifts:     shifts,
	}
}

// Generate 为 req 中的每个 (员工, 日期) 解析应出勤窗口并批量覆盖写入。
// 只有日期范围错误和目标排班本身不合法会直接返回错误，其余失败都记录在报告中。
// ctx 被取消时已经写入的批次保留，未处理的部分计入 Skipped。
func (s *Scheduler) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationReport, error) {
	report := &domain.GenerationReport{
		StartedAt:      time.Now(),
		FailureDetails: []domain.GenerationFailure{},
	}

	if err := utils.ValidateDateRange(req.StartDate, req.EndDate, s.parameters.MaxRangeDays); err != nil {
		return nil, err
	}

	snap, err := s.takeSnapshot(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	// 目标排班不合法时整批拒绝
	if _, err := snap.source(ctx, req.Schedule); err != nil {
		return nil, err
	}

	employees, missing, err := s.resolveEmployees(ctx, req)
	if err != nil {
		return nil, err
	}

	days := domain.DaysInclusive(req.StartDate, req.EndDate)
	report.TotalPairs = (len(employees) + len(missing)) * days

	// 不存在或没有有效分配的员工，其所有日期都记为失败
	for _, id := range missing {
		report.FailureDetails = append(report.FailureDetails, failAll(id, req, "员工不存在")...)
	}

	tasks := make([]task, 0, len(employees))
	for _, e := range employees {
		ref, ok := e.Assignment()
		if !ok || !e.IsActive {
			reason := (&domain.UnassignedScheduleError{EmployeeID: e.ID}).Error()
			report.FailureDetails = append(report.FailureDetails, failAll(e.ID, req, reason)...)
			continue
		}

		src, err := snap.source(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			report.FailureDetails = append(report.FailureDetails, failAll(e.ID, req, err.Error())...)
			continue
		}

		tasks = append(tasks, task{employeeID: e.ID, source: src})
	}

	written, writeFailures := s.run(ctx, tasks, req, snap.holidays)

	report.FailureDetails = append(report.FailureDetails, writeFailures...)
	report.CreatedOrUpdated = written
	report.Failed = len(report.FailureDetails)
	report.Skipped = report.TotalPairs - report.CreatedOrUpdated - report.Failed
	report.Cancelled = ctx.Err() != nil
	report.FinishedAt = time.Now()
	sortFailures(report.FailureDetails)

	return report, nil
}

// run 并发解析所有任务，由单独的 goroutine 收集结果并分批写入
func (s *Scheduler) run(ctx context.Context, tasks []task, req *domain.GenerationRequest, holidays resolver.HolidayCalendar) (int, []domain.GenerationFailure) {
	out := make(chan outcome, s.parameters.BatchSize)

	var (
		written  int
		failures []domain.GenerationFailure
	)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		written, failures = s.collect(ctx, out)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parameters.Concurrency)

	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return s.resolveTask(gctx, t, req, holidays, out)
		})
	}

	// 只有 ctx 取消会让 worker 返回错误，此时交给报告中的 Cancelled 表示
	_ = g.Wait()
	close(out)
	<-writerDone

	return written, failures
}

func (s *Scheduler) resolveTask(ctx context.Context, t task, req *domain.GenerationRequest, holidays resolver.HolidayCalendar, out chan<- outcome) error {
	for d := req.StartDate; !d.After(req.EndDate); d = d.AddDays(1) {
		var o outcome

		w, err := resolver.ResolveWindow(t.source, d, holidays)
		switch {
		case err != nil:
			o.failure = &domain.GenerationFailure{EmployeeID: t.employeeID, Date: d, Reason: err.Error()}
		case req.SkipHolidays && w.OffReason == domain.OffReasonHoliday:
			continue
		default:
			o.shift = w.ToShift(t.employeeID)
		}

		select {
		case out <- o:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// collect 消费解析结果，满 BatchSize 条写入一次
func (s *Scheduler) collect(ctx context.Context, in <-chan outcome) (int, []domain.GenerationFailure) {
	var (
		written  int
		failures []domain.GenerationFailure
	)
	batch := make([]*domain.Shift, 0, s.parameters.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		defer func() { batch = batch[:0] }()

		// 已取消时不再写入，这些记录计入 Skipped
		if ctx.Err() != nil {
			return
		}

		if err := s.shifts.UpsertShifts(ctx, batch); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			reason := fmt.Sprintf("写入排班失败: %v", err)
			for _, shift := range batch {
				failures = append(failures, domain.GenerationFailure{EmployeeID: shift.EmployeeID, Date: shift.Date, Reason: reason})
			}
			return
		}
		written += len(batch)
	}

	for o := range in {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		batch = append(batch, o.shift)
		if len(batch) >= s.parameters.BatchSize {
			flush()
		}
	}
	flush()

	return written, failures
}

// Preview 只做统计，不写入任何数据，用于在执行前提示将被覆盖的记录数
func (s *Scheduler) Preview(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationPreview, error) {
	if err := utils.ValidateDateRange(req.StartDate, req.EndDate, s.parameters.MaxRangeDays); err != nil {
		return nil, err
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	snap := newSnapshot(s.schedules, catalog, nil, s.parameters.Convention)
	if _, err := snap.source(ctx, req.Schedule); err != nil {
		return nil, err
	}

	employees, missing, err := s.resolveEmployees(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.ID)
	}

	existing := int64(0)
	if len(ids) > 0 {
		existing, err = s.shifts.CountShifts(ctx, ids, req.StartDate, req.EndDate)
		if err != nil {
			return nil, err
		}
	}

	days := domain.DaysInclusive(req.StartDate, req.EndDate)
	count := len(employees) + len(missing)

	return &domain.GenerationPreview{
		EmployeeCount:  count,
		Days:           days,
		TotalPairs:     count * days,
		ExistingShifts: existing,
	}, nil
}

// Windows 解析 ref 在 [from, to] 内每一天的窗口，使用与 Generate 相同的快照方式，但不写入任何数据
func (s *Scheduler) Windows(ctx context.Context, ref domain.ScheduleRef, from, to domain.Date) ([]resolver.Window, error) {
	if err := utils.ValidateDateRange(from, to, s.parameters.MaxRangeDays); err != nil {
		return nil, err
	}

	snap, err := s.takeSnapshot(ctx, from, to)
	if err != nil {
		return nil, err
	}

	src, err := snap.source(ctx, ref)
	if err != nil {
		return nil, err
	}

	return resolver.ResolveRange(src, from, to, snap.holidays)
}
