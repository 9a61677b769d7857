package seed

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
)

type fakeStore struct {
	nextID    int64
	patterns  []*domain.AtomicPattern
	weeks     map[string]*domain.WeekPattern
	schedules map[string]*domain.ShiftSchedule
	employees []*domain.Employee
	codes     map[string]bool
	holidays  map[string]domain.Holiday
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		weeks:     map[string]*domain.WeekPattern{},
		schedules: map[string]*domain.ShiftSchedule{},
		codes:     map[string]bool{},
		holidays:  map[string]domain.Holiday{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) GetAllAtomicPatterns(context.Context) ([]*domain.AtomicPattern, error) {
	return s.patterns, nil
}

func (s *fakeStore) CreateAtomicPattern(_ context.Context, p *domain.AtomicPattern) error {
	p.ID = s.id()
	p.DurationMinutes = p.ComputedDuration()
	s.patterns = append(s.patterns, p)
	return nil
}

func (s *fakeStore) GetWeekPatternByName(_ context.Context, name string) (*domain.WeekPattern, error) {
	wp, ok := s.weeks[name]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return wp, nil
}

func (s *fakeStore) CreateWeekPattern(_ context.Context, wp *domain.WeekPattern) error {
	wp.ID = s.id()
	s.weeks[wp.Name] = wp
	return nil
}

func (s *fakeStore) GetShiftScheduleByName(_ context.Context, name string) (*domain.ShiftSchedule, error) {
	ss, ok := s.schedules[name]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return ss, nil
}

func (s *fakeStore) CreateShiftSchedule(_ context.Context, ss *domain.ShiftSchedule) error {
	ss.ID = s.id()
	s.schedules[ss.Name] = ss
	return nil
}

func (s *fakeStore) CreateEmployee(_ context.Context, e *domain.Employee) error {
	if s.codes[e.EmployeeCode] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "employees_employee_code_key"}
	}
	s.codes[e.EmployeeCode] = true
	e.ID = s.id()
	s.employees = append(s.employees, e)
	return nil
}

func (s *fakeStore) UpsertHoliday(_ context.Context, h *domain.Holiday) error {
	s.holidays[h.Date.String()+"/"+h.Name] = *h
	return nil
}

func TestSeedCatalog_Idempotent(t *testing.T) {
	s := newFakeStore()

	first, err := SeedCatalog(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, s.patterns, 4)
	assert.Len(t, s.weeks, 1)
	assert.Len(t, s.schedules, 2)

	second, err := SeedCatalog(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, s.patterns, 4)
	assert.Len(t, s.schedules, 2)
	assert.Equal(t, first.StandardWeek.ID, second.StandardWeek.ID)
	assert.Equal(t, first.Post.ID, second.Post.ID)
}

// 种子数据应当能被引擎直接解析
func TestSeedCatalog_Resolves(t *testing.T) {
	s := newFakeStore()
	catalog, err := SeedCatalog(context.Background(), s)
	require.NoError(t, err)

	week, err := resolver.NewWeekSource(catalog.StandardWeek, resolver.PersianWeek)
	require.NoError(t, err)

	// 2024-03-23 是周六
	w, err := resolver.ResolveWindow(week, domain.MustDate("2024-03-23"), nil)
	require.NoError(t, err)
	assert.True(t, w.IsWorkingDay)
	assert.Equal(t, "08:00", w.Start.String())

	// 周四休息
	w, err = resolver.ResolveWindow(week, domain.MustDate("2024-03-28"), nil)
	require.NoError(t, err)
	assert.False(t, w.IsWorkingDay)

	post, err := resolver.NewCycleSource(catalog.Post, resolver.NewCatalog(s.patterns))
	require.NoError(t, err)
	w, err = resolver.ResolveWindow(post, domain.MustDate("2024-03-20"), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1440, w.DurationMinutes)
	assert.True(t, w.SpansNextDay)
	assert.True(t, post.IgnoresHolidays())
}

func TestSeedEmployees(t *testing.T) {
	s := newFakeStore()
	ref := domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: 3}

	n := SeedEmployees(context.Background(), s, ref, 5)
	assert.Equal(t, len(s.employees), n)
	for _, e := range s.employees {
		got, ok := e.Assignment()
		assert.True(t, ok)
		assert.Equal(t, ref, got)
	}
}

func TestReadHolidays(t *testing.T) {
	input := "date,name,is_official\n2024-03-20,Nowruz,true\n2024-03-24, Bridge day,false\n"

	holidays, err := ReadHolidays(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, domain.MustDate("2024-03-20"), holidays[0].Date)
	assert.True(t, holidays[0].IsOfficial)
	assert.Equal(t, "Bridge day", holidays[1].Name)
	assert.False(t, holidays[1].IsOfficial)
}

func TestReadHolidays_Errors(t *testing.T) {
	cases := map[string]string{
		"表头错误":   "day,name,official\n",
		"日期格式错误": "date,name,is_official\n20/03/2024,Nowruz,true\n",
		"布尔值错误":  "date,name,is_official\n2024-03-20,Nowruz,yes\n",
		"名称为空":   "date,name,is_official\n2024-03-20,,true\n",
		"列数错误":   "date,name,is_official\n2024-03-20,Nowruz\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadHolidays(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestSeedHolidays_DataFile(t *testing.T) {
	s := newFakeStore()

	n, err := SeedHolidays(context.Background(), s, "data/holidays.csv")
	require.NoError(t, err)
	assert.Equal(t, len(s.holidays), n)

	_, err = SeedHolidays(context.Background(), s, "data/missing.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
