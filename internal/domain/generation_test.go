package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationJob_Lifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	req := GenerationRequest{
		Schedule:  ScheduleRef{Kind: ScheduleKindShiftSchedule, ID: 3},
		StartDate: MustDate("2024-03-01"),
		EndDate:   MustDate("2024-03-31"),
	}

	job := NewGenerationJob("job-1", req, "admin", now)
	assert.Equal(t, JobStateQueued, job.State)
	assert.False(t, job.Finished())

	job.Start(now.Add(time.Second))
	assert.Equal(t, JobStateRunning, job.State)

	job.Fail(errors.New("日期范围不合法"), now.Add(2*time.Second))
	assert.True(t, job.Finished())
	assert.Equal(t, "日期范围不合法", job.Error)

	report := &GenerationReport{TotalPairs: 31, CreatedOrUpdated: 31}
	job.Complete(report, now.Add(3*time.Second))
	assert.Equal(t, JobStateCompleted, job.State)
	assert.Empty(t, job.Error)
	assert.Same(t, report, job.Report)
}

func TestGenerationJob_JSON(t *testing.T) {
	job := NewGenerationJob("job-2", GenerationRequest{
		Schedule:    ScheduleRef{Kind: ScheduleKindWeekPattern, ID: 1},
		EmployeeIDs: []int64{1, 2},
		StartDate:   MustDate("2024-03-01"),
		EndDate:     MustDate("2024-03-02"),
	}, "admin", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"startDate":"2024-03-01"`)
	assert.Contains(t, string(data), `"kind":"week_pattern"`)

	var decoded GenerationJob
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Request.StartDate.Equal(job.Request.StartDate))
	assert.Equal(t, job.Request.EmployeeIDs, decoded.Request.EmployeeIDs)
}
