package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

type fakeGenerator struct {
	report *domain.GenerationReport
	err    error
	gotCtx context.Context
}

func (g *fakeGenerator) Generate(ctx context.Context, _ *domain.GenerationRequest) (*domain.GenerationReport, error) {
	g.gotCtx = ctx
	return g.report, g.err
}

type fakeStore struct {
	states   []domain.JobState
	released []string
}

func (s *fakeStore) Save(_ context.Context, job *domain.GenerationJob) error {
	s.states = append(s.states, job.State)
	return nil
}

func (s *fakeStore) ReleaseLock(_ context.Context, ref domain.ScheduleRef, jobID string) error {
	s.released = append(s.released, ref.String()+"/"+jobID)
	return nil
}

type fakePublisher struct {
	jobs []*domain.GenerationJob
}

func (p *fakePublisher) Publish(_ context.Context, job *domain.GenerationJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

func message(t *testing.T) []byte {
	job := domain.NewGenerationJob("job-1", domain.GenerationRequest{
		Schedule:  domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: 1},
		StartDate: domain.MustDate("2024-03-01"),
		EndDate:   domain.MustDate("2024-03-02"),
	}, "admin", time.Now())

	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandle_Completed(t *testing.T) {
	gen := &fakeGenerator{report: &domain.GenerationReport{TotalPairs: 6, CreatedOrUpdated: 4, Failed: 2}}
	store := &fakeStore{}
	pub := &fakePublisher{}
	w := New(gen, store, pub, discardLogger(), time.Minute)

	ack := w.Handle(context.Background(), message(t))

	assert.Equal(t, AckDone, ack)
	assert.Equal(t, []domain.JobState{domain.JobStateRunning, domain.JobStateCompleted}, store.states)
	assert.Equal(t, []string{"week_pattern:1/job-1"}, store.released)

	require.Len(t, pub.jobs, 1)
	assert.Equal(t, 4, pub.jobs[0].Report.CreatedOrUpdated)

	_, hasDeadline := gen.gotCtx.Deadline()
	assert.True(t, hasDeadline)
}

func TestHandle_RejectedBatch(t *testing.T) {
	gen := &fakeGenerator{err: &domain.RangeError{Reason: "开始日期晚于结束日期"}}
	store := &fakeStore{}
	pub := &fakePublisher{}
	w := New(gen, store, pub, discardLogger(), 0)

	ack := w.Handle(context.Background(), message(t))

	assert.Equal(t, AckDone, ack)
	assert.Equal(t, domain.JobStateFailed, store.states[len(store.states)-1])
	require.Len(t, pub.jobs, 1)
	assert.Equal(t, "开始日期晚于结束日期", pub.jobs[0].Error)
	assert.Len(t, store.released, 1, "失败的任务同样要释放锁")
}

func TestHandle_MalformedMessage(t *testing.T) {
	store := &fakeStore{}
	w := New(&fakeGenerator{err: errors.New("unreachable")}, store, nil, discardLogger(), 0)

	assert.Equal(t, AckDiscard, w.Handle(context.Background(), []byte("not json")))
	assert.Equal(t, AckDiscard, w.Handle(context.Background(), []byte(`{"state":"queued"}`)))
	assert.Empty(t, store.states)
}

func TestHandle_SavesResultAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{report: &domain.GenerationReport{TotalPairs: 2, Skipped: 2, Cancelled: true}}
	store := &fakeStore{}
	w := New(gen, store, nil, discardLogger(), 0)

	assert.Equal(t, AckDone, w.Handle(ctx, message(t)))
	assert.Equal(t, domain.JobStateCompleted, store.states[len(store.states)-1])
}
