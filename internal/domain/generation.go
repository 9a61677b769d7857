package domain

import "time"

type GenerationRequest struct {
	Schedule     ScheduleRef `json:"schedule"`
	EmployeeIDs  []int64     `json:"employeeIDs"` // 为空表示该排班下的所有在职员工
	StartDate    Date        `json:"startDate"`
	EndDate      Date        `json:"endDate"`
	SkipHolidays bool        `json:"skipHolidays"` // 为 true 时因假日休息的日期不落库
}

type GenerationFailure struct {
	EmployeeID int64  `json:"employeeID"`
	Date       Date   `json:"date"`
	Reason     string `json:"reason"`
}

// GenerationReport 满足 TotalPairs = CreatedOrUpdated + Skipped + Failed
type GenerationReport struct {
	TotalPairs       int                 `json:"totalPairs"`
	CreatedOrUpdated int                 `json:"createdOrUpdated"`
	Skipped          int                 `json:"skipped"`
	Failed           int                 `json:"failed"`
	FailureDetails   []GenerationFailure `json:"failureDetails"`
	Cancelled        bool                `json:"cancelled"`
	StartedAt        time.Time           `json:"startedAt"`
	FinishedAt       time.Time           `json:"finishedAt"`
}

// GenerationPreview 是执行前的预估，ExistingShifts 为将被覆盖的已有记录数
type GenerationPreview struct {
	EmployeeCount  int   `json:"employeeCount"`
	Days           int   `json:"days"`
	TotalPairs     int   `json:"totalPairs"`
	ExistingShifts int64 `json:"existingShifts"`
}

type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// GenerationJob 是放入消息队列的任务，同时也是 redis 中保存的任务状态
type GenerationJob struct {
	ID          string            `json:"id"`
	Request     GenerationRequest `json:"request"`
	RequestedBy string            `json:"requestedBy"`
	State       JobState          `json:"state"`
	Report      *GenerationReport `json:"report,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func NewGenerationJob(id string, req GenerationRequest, requestedBy string, now time.Time) *GenerationJob {
	return &GenerationJob{
		ID:          id,
		Request:     req,
		RequestedBy: requestedBy,
		State:       JobStateQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (j *GenerationJob) Start(now time.Time) {
	j.State = JobStateRunning
	j.UpdatedAt = now
}

// Complete 记录报告，部分失败和被取消的任务同样视为完成
func (j *GenerationJob) Complete(report *GenerationReport, now time.Time) {
	j.State = JobStateCompleted
	j.Report = report
	j.Error = ""
	j.UpdatedAt = now
}

// Fail 用于整批被拒绝的情况，例如日期范围错误或目标排班不合法
func (j *GenerationJob) Fail(err error, now time.Time) {
	j.State = JobStateFailed
	j.Report = nil
	j.Error = err.Error()
	j.UpdatedAt = now
}

func (j *GenerationJob) Finished() bool {
	return j.State == JobStateCompleted || j.State == JobStateFailed
}
