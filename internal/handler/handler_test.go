package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
)

const testSecret = "test-secret"

type fakeStore struct {
	patterns  []*domain.AtomicPattern
	employees map[int64]*domain.Employee
}

func (s *fakeStore) GetAllAtomicPatterns(context.Context) ([]*domain.AtomicPattern, error) {
	return s.patterns, nil
}

func (s *fakeStore) GetAtomicPatternByID(_ context.Context, id int64) (*domain.AtomicPattern, error) {
	for _, p := range s.patterns {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) GetAllWeekPatterns(context.Context) ([]*domain.WeekPattern, error) {
	return nil, nil
}

func (s *fakeStore) GetWeekPatternByID(context.Context, int64) (*domain.WeekPattern, error) {
	return nil, domain.ErrScheduleNotFound
}

func (s *fakeStore) GetAllShiftSchedules(context.Context) ([]*domain.ShiftSchedule, error) {
	return nil, nil
}

func (s *fakeStore) GetShiftScheduleByID(context.Context, int64) (*domain.ShiftSchedule, error) {
	return nil, domain.ErrScheduleNotFound
}

func (s *fakeStore) GetHolidaysBetween(context.Context, domain.Date, domain.Date) ([]domain.Holiday, error) {
	return []domain.Holiday{}, nil
}

func (s *fakeStore) GetEmployeeByID(_ context.Context, id int64) (*domain.Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (s *fakeStore) GetShiftsByEmployee(context.Context, int64, domain.Date, domain.Date) ([]*domain.Shift, error) {
	return []*domain.Shift{}, nil
}

type fakeGenerator struct {
	preview *domain.GenerationPreview
	err     error
	windows []resolver.Window
}

func (g *fakeGenerator) Preview(context.Context, *domain.GenerationRequest) (*domain.GenerationPreview, error) {
	return g.preview, g.err
}

func (g *fakeGenerator) Windows(context.Context, domain.ScheduleRef, domain.Date, domain.Date) ([]resolver.Window, error) {
	return g.windows, g.err
}

type fakeTracker struct {
	jobs  map[string]*domain.GenerationJob
	locks map[domain.ScheduleRef]string
}

func (t *fakeTracker) Save(_ context.Context, job *domain.GenerationJob) error {
	t.jobs[job.ID] = job
	return nil
}

func (t *fakeTracker) Get(_ context.Context, id string) (*domain.GenerationJob, error) {
	job, ok := t.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (t *fakeTracker) AcquireLock(_ context.Context, ref domain.ScheduleRef, jobID string, _ time.Duration) (bool, error) {
	if _, held := t.locks[ref]; held {
		return false, nil
	}
	t.locks[ref] = jobID
	return true, nil
}

func (t *fakeTracker) ReleaseLock(_ context.Context, ref domain.ScheduleRef, jobID string) error {
	if t.locks[ref] == jobID {
		delete(t.locks, ref)
	}
	return nil
}

type fakeQueue struct {
	published []*domain.GenerationJob
}

func (q *fakeQueue) Publish(_ context.Context, job *domain.GenerationJob) error {
	q.published = append(q.published, job)
	return nil
}

type testEnv struct {
	handler   *Handler
	store     *fakeStore
	generator *fakeGenerator
	tracker   *fakeTracker
	queue     *fakeQueue
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.AdminRole = "admin"
	cfg.Generation.Timezone = "Asia/Tehran"
	cfg.Generation.RejectOverlap = true
	cfg.Generation.Timeout = 1800

	env := &testEnv{
		store: &fakeStore{
			patterns: []*domain.AtomicPattern{
				{ID: 1, Name: "Night", Kind: domain.PatternKindFixed, StartTime: domain.MustClockTime("22:00"), EndTime: domain.MustClockTime("06:00")},
			},
			employees: map[int64]*domain.Employee{
				1: {ID: 1, EmployeeCode: "zhangsan", IsActive: true, WeekPatternID: ptr(int64(1))},
				2: {ID: 2, EmployeeCode: "lisi", IsActive: true},
			},
		},
		generator: &fakeGenerator{preview: &domain.GenerationPreview{EmployeeCount: 1, Days: 2, TotalPairs: 2}},
		tracker:   &fakeTracker{jobs: map[string]*domain.GenerationJob{}, locks: map[domain.ScheduleRef]string{}},
		queue:     &fakeQueue{},
	}

	h, err := NewHandler(cfg, env.store, env.generator, env.tracker, env.queue)
	require.NoError(t, err)
	h.RegisterRoutes()
	env.handler = h

	return env
}

func ptr[T any](v T) *T { return &v }

func token(t *testing.T, role string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (env *testEnv) do(t *testing.T, method, path, role string, body any) Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, role))
	}
	rec := httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/atomic-patterns", "", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)

	req := httptest.NewRequest(http.MethodGet, "/atomic-patterns", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "无效的令牌")

	req = httptest.NewRequest(http.MethodGet, "/atomic-patterns", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token(t, "staff")})
	rec = httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestGetAtomicPattern(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/atomic-patterns/1", "staff", nil)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "22:00", data["startTime"])
	assert.Equal(t, float64(480), data["durationMinutes"])

	resp = env.do(t, http.MethodGet, "/atomic-patterns/9", "staff", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "模板不存在", resp.Message)
}

func TestEmployeeWindow(t *testing.T) {
	env := newTestEnv(t)
	start, end := domain.MustClockTime("08:00"), domain.MustClockTime("16:00")
	env.generator.windows = []resolver.Window{{
		Date:                 domain.MustDate("2024-03-02"),
		Source:               domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: 1},
		IsWorkingDay:         true,
		Start:                &start,
		End:                  &end,
		DurationMinutes:      480,
		FloatingStartMinutes: 15,
	}}

	resp := env.do(t, http.MethodGet, "/employees/1/window?date=2024-03-02", "staff", nil)
	require.True(t, resp.Success, resp.Message)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "08:00", data["start"])
	assert.Equal(t, "2024-03-02T08:00:00+03:30", data["expectedStartAt"])
	assert.Equal(t, "2024-03-02T08:15:00+03:30", data["latestCheckInAt"])

	resp = env.do(t, http.MethodGet, "/employees/2/window?date=2024-03-02", "staff", nil)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "没有有效的排班分配")

	resp = env.do(t, http.MethodGet, "/employees/3/window?date=2024-03-02", "staff", nil)
	assert.Equal(t, "员工不存在", resp.Message)

	resp = env.do(t, http.MethodGet, "/employees/1/window?date=03/02/2024", "staff", nil)
	assert.False(t, resp.Success)
}

func generationBody(confirm bool) map[string]any {
	return map[string]any{
		"scheduleKind":     "week_pattern",
		"scheduleID":       1,
		"startDate":        "2024-03-01",
		"endDate":          "2024-03-02",
		"confirmOverwrite": confirm,
	}
}

func TestCreateShiftGeneration_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/shift-generations", "staff", generationBody(false))
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)
	assert.Empty(t, env.queue.published)
}

func TestCreateShiftGeneration_Validation(t *testing.T) {
	env := newTestEnv(t)

	body := generationBody(false)
	body["scheduleKind"] = "monthly"
	resp := env.do(t, http.MethodPost, "/shift-generations", "admin", body)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	env.generator.err = &domain.RangeError{Reason: "开始日期 2024-03-02 晚于结束日期 2024-03-01"}
	resp = env.do(t, http.MethodPost, "/shift-generations", "admin", generationBody(false))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "晚于结束日期")
	assert.Empty(t, env.queue.published)
}

func TestCreateShiftGeneration_OverwriteConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.generator.preview.ExistingShifts = 2

	resp := env.do(t, http.MethodPost, "/shift-generations", "admin", generationBody(false))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "覆盖 2 条")
	assert.Equal(t, float64(2), resp.Data.(map[string]any)["existingShifts"])
	assert.Empty(t, env.queue.published)

	resp = env.do(t, http.MethodPost, "/shift-generations", "admin", generationBody(true))
	require.True(t, resp.Success, resp.Message)
	require.Len(t, env.queue.published, 1)

	job := env.queue.published[0]
	assert.Equal(t, domain.JobStateQueued, job.State)
	assert.Equal(t, "42", job.RequestedBy)
	assert.Equal(t, job.ID, env.tracker.locks[job.Request.Schedule])

	resp = env.do(t, http.MethodGet, "/shift-generations/"+job.ID, "admin", nil)
	require.True(t, resp.Success)
	assert.Equal(t, "queued", resp.Data.(map[string]any)["state"])
}

func TestCreateShiftGeneration_RejectsOverlap(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/shift-generations", "admin", generationBody(false))
	require.True(t, resp.Success)

	resp = env.do(t, http.MethodPost, "/shift-generations", "admin", generationBody(false))
	assert.False(t, resp.Success)
	assert.Equal(t, domain.ErrGenerationInProgress.Error(), resp.Message)
	assert.Len(t, env.queue.published, 1)
}

func TestGetShiftGeneration_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/shift-generations/2b1f6f0e-5a51-4c43-9d0b-1f0c3a2c9b11", "admin", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, domain.ErrJobNotFound.Error(), resp.Message)

	resp = env.do(t, http.MethodGet, "/shift-generations/abc", "admin", nil)
	assert.Equal(t, "任务ID无效", resp.Message)
}

func TestPreviewShiftGeneration(t *testing.T) {
	env := newTestEnv(t)
	env.generator.preview.ExistingShifts = 5

	resp := env.do(t, http.MethodPost, "/shift-generations/preview", "admin", generationBody(false))
	require.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["totalPairs"])
	assert.Equal(t, float64(5), data["existingShifts"])
	assert.Empty(t, env.tracker.locks)
}
