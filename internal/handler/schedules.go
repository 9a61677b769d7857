package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// parseDateRange 读取 ?from=&to=，缺少 to 时只取 from 当天
func parseDateRange(r *http.Request) (domain.Date, domain.Date, error) {
	from, err := domain.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}

	toParam := r.URL.Query().Get("to")
	if toParam == "" {
		return from, from, nil
	}
	to, err := domain.ParseDate(toParam)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}

	return from, to, nil
}

func (h *Handler) GetAllAtomicPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.repository.GetAllAtomicPatterns(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取原子模板成功", patterns)
}

func (h *Handler) GetAtomicPattern(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(AtomicPatternCtx).(*domain.AtomicPattern)
	p.DurationMinutes = p.ComputedDuration()

	h.successResponse(w, r, "获取原子模板成功", p)
}

func (h *Handler) GetAllWeekPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.repository.GetAllWeekPatterns(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取周模式成功", patterns)
}

func (h *Handler) GetWeekPattern(w http.ResponseWriter, r *http.Request) {
	wp := r.Context().Value(WeekPatternCtx).(*domain.WeekPattern)

	h.successResponse(w, r, "获取周模式成功", wp)
}

func (h *Handler) GetWeekPatternWindows(w http.ResponseWriter, r *http.Request) {
	wp := r.Context().Value(WeekPatternCtx).(*domain.WeekPattern)
	h.writeWindows(w, r, domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: wp.ID})
}

func (h *Handler) GetAllShiftSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repository.GetAllShiftSchedules(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取轮班表成功", schedules)
}

func (h *Handler) GetShiftSchedule(w http.ResponseWriter, r *http.Request) {
	ss := r.Context().Value(ShiftScheduleCtx).(*domain.ShiftSchedule)

	h.successResponse(w, r, "获取轮班表成功", ss)
}

func (h *Handler) GetShiftScheduleWindows(w http.ResponseWriter, r *http.Request) {
	ss := r.Context().Value(ShiftScheduleCtx).(*domain.ShiftSchedule)
	h.writeWindows(w, r, domain.ScheduleRef{Kind: domain.ScheduleKindShiftSchedule, ID: ss.ID})
}

func (h *Handler) writeWindows(w http.ResponseWriter, r *http.Request, ref domain.ScheduleRef) {
	from, to, err := parseDateRange(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	windows, err := h.generator.Windows(r.Context(), ref, from, to)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	views := make([]windowView, 0, len(windows))
	for _, win := range windows {
		views = append(views, newWindowView(win, h.location))
	}

	h.successResponse(w, r, "解析排班成功", views)
}

func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if to.Before(from) {
		h.errorResponse(w, r, "开始日期晚于结束日期")
		return
	}

	holidays, err := h.repository.GetHolidaysBetween(r.Context(), from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取假日成功", holidays)
}
