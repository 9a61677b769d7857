package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

type generationRequest struct {
	ScheduleKind     string  `json:"scheduleKind" validate:"required,oneof=week_pattern shift_schedule"`
	ScheduleID       int64   `json:"scheduleID" validate:"required,gt=0"`
	EmployeeIDs      []int64 `json:"employeeIDs" validate:"omitempty,dive,gt=0"`
	StartDate        string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	SkipHolidays     bool    `json:"skipHolidays"`
	ConfirmOverwrite bool    `json:"confirmOverwrite"`
}

func (h *Handler) readGenerationRequest(r *http.Request) (*generationRequest, *domain.GenerationRequest, error) {
	var req generationRequest
	if err := h.readJSON(r, &req); err != nil {
		return nil, nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, nil, err
	}

	// 格式已经由 validator 检查过
	start, _ := domain.ParseDate(req.StartDate)
	end, _ := domain.ParseDate(req.EndDate)

	return &req, &domain.GenerationRequest{
		Schedule:     domain.ScheduleRef{Kind: domain.ScheduleKind(req.ScheduleKind), ID: req.ScheduleID},
		EmployeeIDs:  req.EmployeeIDs,
		StartDate:    start,
		EndDate:      end,
		SkipHolidays: req.SkipHolidays,
	}, nil
}

// PreviewShiftGeneration 返回本次生成涉及的数量以及将被覆盖的已有排班数
func (h *Handler) PreviewShiftGeneration(w http.ResponseWriter, r *http.Request) {
	_, greq, err := h.readGenerationRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	preview, err := h.generator.Preview(r.Context(), greq)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	h.successResponse(w, r, "预览成功", preview)
}

func (h *Handler) CreateShiftGeneration(w http.ResponseWriter, r *http.Request) {
	req, greq, err := h.readGenerationRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 预览同时完成了范围和目标排班的校验，不合法时直接拒绝
	preview, err := h.generator.Preview(r.Context(), greq)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	if preview.ExistingShifts > 0 && !req.ConfirmOverwrite {
		msg := fmt.Sprintf("本次生成将覆盖 %d 条已有排班，请确认后重试", preview.ExistingShifts)
		h.errorResponseWithData(w, r, msg, preview)
		return
	}

	sub, _ := r.Context().Value(SubCtxKey).(string)
	job := domain.NewGenerationJob(uuid.NewString(), *greq, sub, time.Now())

	if h.config.Generation.RejectOverlap {
		// 锁的有效期比任务超时稍长，worker 异常退出时锁也会自动过期
		ttl := time.Duration(h.config.Generation.Timeout)*time.Second + time.Minute
		ok, err := h.tracker.AcquireLock(r.Context(), greq.Schedule, job.ID, ttl)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if !ok {
			h.errorResponse(w, r, domain.ErrGenerationInProgress.Error())
			return
		}
	}

	if err := h.tracker.Save(r.Context(), job); err != nil {
		h.releaseLock(r, job)
		h.internalServerError(w, r, err)
		return
	}

	if err := h.queue.Publish(r.Context(), job); err != nil {
		h.releaseLock(r, job)
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班生成任务已提交", job)
}

func (h *Handler) releaseLock(r *http.Request, job *domain.GenerationJob) {
	if !h.config.Generation.RejectOverlap {
		return
	}
	if err := h.tracker.ReleaseLock(r.Context(), job.Request.Schedule, job.ID); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) GetShiftGeneration(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := uuid.Validate(jobID); err != nil {
		h.errorResponse(w, r, "任务ID无效")
		return
	}

	job, err := h.tracker.Get(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJobNotFound):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取生成任务成功", job)
}
