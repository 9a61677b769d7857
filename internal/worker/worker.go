package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

type Generator interface {
	Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationReport, error)
}

type JobStore interface {
	Save(ctx context.Context, job *domain.GenerationJob) error
	ReleaseLock(ctx context.Context, ref domain.ScheduleRef, jobID string) error
}

// Publisher 用于发布任务完成事件，通知的投递由下游负责
type Publisher interface {
	Publish(ctx context.Context, job *domain.GenerationJob) error
}

// Ack 表示处理一条消息后应该如何确认
type Ack int

const (
	AckDone    Ack = iota // 确认消息
	AckDiscard            // 拒绝且不重新入队
)

type Worker struct {
	generator Generator
	store     JobStore
	done      Publisher
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

func New(generator Generator, store JobStore, done Publisher, logger *slog.Logger, timeout time.Duration) *Worker {
	return &Worker{
		generator: generator,
		store:     store,
		done:      done,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Handle 执行一条生成任务消息。无论生成结果如何，都会保存最终状态、释放排班锁并发布完成事件。
func (w *Worker) Handle(ctx context.Context, body []byte) Ack {
	job := &domain.GenerationJob{}
	if err := json.Unmarshal(body, job); err != nil {
		w.logger.Error("任务消息反序列化失败", slog.String("error", err.Error()))
		return AckDiscard
	}
	if job.ID == "" {
		w.logger.Error("任务消息缺少 ID", slog.String("message", string(body)))
		return AckDiscard
	}

	logger := w.logger.With(slog.String("job_id", job.ID), slog.String("schedule", job.Request.Schedule.String()))

	job.Start(w.now())
	if err := w.store.Save(ctx, job); err != nil {
		logger.Error("无法保存任务状态", slog.String("error", err.Error()))
	}
	logger.Info("开始生成排班",
		slog.String("start_date", job.Request.StartDate.String()),
		slog.String("end_date", job.Request.EndDate.String()),
		slog.Int("employees", len(job.Request.EmployeeIDs)),
	)

	runCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	report, err := w.generator.Generate(runCtx, &job.Request)
	if err != nil {
		job.Fail(err, w.now())
		logger.Error("排班生成被拒绝", slog.String("error", err.Error()))
	} else {
		job.Complete(report, w.now())
		logger.Info("排班生成完成",
			slog.Int("total", report.TotalPairs),
			slog.Int("created_or_updated", report.CreatedOrUpdated),
			slog.Int("skipped", report.Skipped),
			slog.Int("failed", report.Failed),
			slog.Bool("cancelled", report.Cancelled),
		)
	}

	// 收尾工作不受关闭信号影响
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := w.store.Save(finishCtx, job); err != nil {
		logger.Error("无法保存任务结果", slog.String("error", err.Error()))
	}
	if err := w.store.ReleaseLock(finishCtx, job.Request.Schedule, job.ID); err != nil {
		logger.Error("无法释放排班锁", slog.String("error", err.Error()))
	}
	if w.done != nil {
		if err := w.done.Publish(finishCtx, job); err != nil {
			logger.Error("无法发布完成事件", slog.String("error", err.Error()))
		}
	}

	return AckDone
}
