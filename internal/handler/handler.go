package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
)

// Store 是 handler 需要的只读查询，由 repository.Repository 实现
type Store interface {
	GetAllAtomicPatterns(ctx context.Context) ([]*domain.AtomicPattern, error)
	GetAtomicPatternByID(ctx context.Context, id int64) (*domain.AtomicPattern, error)
	GetAllWeekPatterns(ctx context.Context) ([]*domain.WeekPattern, error)
	GetWeekPatternByID(ctx context.Context, id int64) (*domain.WeekPattern, error)
	GetAllShiftSchedules(ctx context.Context) ([]*domain.ShiftSchedule, error)
	GetShiftScheduleByID(ctx context.Context, id int64) (*domain.ShiftSchedule, error)
	GetHolidaysBetween(ctx context.Context, from, to domain.Date) ([]domain.Holiday, error)
	GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetShiftsByEmployee(ctx context.Context, employeeID int64, from, to domain.Date) ([]*domain.Shift, error)
}

// Generator 由 scheduler.Scheduler 实现
type Generator interface {
	Preview(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationPreview, error)
	Windows(ctx context.Context, ref domain.ScheduleRef, from, to domain.Date) ([]resolver.Window, error)
}

// JobTracker 由 jobs.Tracker 实现
type JobTracker interface {
	Save(ctx context.Context, job *domain.GenerationJob) error
	Get(ctx context.Context, id string) (*domain.GenerationJob, error)
	AcquireLock(ctx context.Context, ref domain.ScheduleRef, jobID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, ref domain.ScheduleRef, jobID string) error
}

type JobQueue interface {
	Publish(ctx context.Context, job *domain.GenerationJob) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	location   *time.Location
	repository Store
	generator  Generator
	tracker    JobTracker
	queue      JobQueue
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, generator Generator, tracker JobTracker, queue JobQueue) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		location:   loc,
		repository: repo,
		generator:  generator,
		tracker:    tracker,
		queue:      queue,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 令牌由外部认证服务签发，这里只做校验
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/atomic-patterns", func(r chi.Router) {
			r.Get("/", h.GetAllAtomicPatterns)
			r.With(h.atomicPattern).Get("/{id}", h.GetAtomicPattern)
		})

		r.Route("/week-patterns", func(r chi.Router) {
			r.Get("/", h.GetAllWeekPatterns)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.weekPattern)
				r.Get("/", h.GetWeekPattern)
				r.Get("/windows", h.GetWeekPatternWindows)
			})
		})

		r.Route("/shift-schedules", func(r chi.Router) {
			r.Get("/", h.GetAllShiftSchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftSchedule)
				r.Get("/", h.GetShiftSchedule)
				r.Get("/windows", h.GetShiftScheduleWindows)
			})
		})

		r.Get("/holidays", h.GetHolidays)

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Use(h.employee)
			r.Get("/window", h.GetEmployeeWindow)
			r.Get("/shifts", h.GetEmployeeShifts)
		})

		// 生成会覆盖已有数据，只允许管理员操作
		r.Route("/shift-generations", func(r chi.Router) {
			r.Use(h.RequiredRole([]string{h.config.JWT.AdminRole}))
			r.Post("/preview", h.PreviewShiftGeneration)
			r.Post("/", h.CreateShiftGeneration)
			r.Get("/{jobID}", h.GetShiftGeneration)
		})
	})
}
