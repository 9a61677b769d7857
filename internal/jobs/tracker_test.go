package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "generation_job_abc", JobKey("abc"))

	week := domain.ScheduleRef{Kind: domain.ScheduleKindWeekPattern, ID: 7}
	cycle := domain.ScheduleRef{Kind: domain.ScheduleKindShiftSchedule, ID: 7}
	assert.Equal(t, "generation_lock_week_pattern_7", LockKey(week))
	assert.NotEqual(t, LockKey(week), LockKey(cycle), "两种排班的 ID 互相独立，锁不能冲突")
}
