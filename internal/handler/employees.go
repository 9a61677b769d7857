package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
)

// windowView 在窗口之外附带配置时区下的绝对时刻，供考勤判定使用
type windowView struct {
	resolver.Window
	ExpectedStartAt    *time.Time `json:"expectedStartAt"`
	ExpectedEndAt      *time.Time `json:"expectedEndAt"`
	LatestCheckInAt    *time.Time `json:"latestCheckInAt"`
	EarliestCheckOutAt *time.Time `json:"earliestCheckOutAt"`
}

func newWindowView(w resolver.Window, loc *time.Location) windowView {
	view := windowView{Window: w}

	if start, end, ok := w.Bounds(loc); ok {
		view.ExpectedStartAt = &start
		view.ExpectedEndAt = &end
	}
	if checkIn, checkOut, ok := w.GraceBounds(loc); ok {
		view.LatestCheckInAt = &checkIn
		view.EarliestCheckOutAt = &checkOut
	}

	return view
}

// GetEmployeeWindow 实时解析员工某天的应出勤窗口，不读取已生成的排班
func (h *Handler) GetEmployeeWindow(w http.ResponseWriter, r *http.Request) {
	e := r.Context().Value(EmployeeCtx).(*domain.Employee)

	d, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	ref, ok := e.Assignment()
	if !ok {
		h.errorResponse(w, r, (&domain.UnassignedScheduleError{EmployeeID: e.ID}).Error())
		return
	}

	windows, err := h.generator.Windows(r.Context(), ref, d, d)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "解析排班成功", newWindowView(windows[0], h.location))
}

func (h *Handler) GetEmployeeShifts(w http.ResponseWriter, r *http.Request) {
	e := r.Context().Value(EmployeeCtx).(*domain.Employee)

	from, to, err := parseDateRange(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if to.Before(from) {
		h.errorResponse(w, r, "开始日期晚于结束日期")
		return
	}

	shifts, err := h.repository.GetShiftsByEmployee(r.Context(), e.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班成功", shifts)
}
