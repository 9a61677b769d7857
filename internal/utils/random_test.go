package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

func TestGenerateEmployeeCodeFromChineseName(t *testing.T) {
	code := GenerateEmployeeCodeFromChineseName("张伟")
	assert.Regexp(t, regexp.MustCompile(`^z[a-z]{0,4}w[a-z]{0,2}[0-9]{2,4}$`), code)
}

func TestGenerateRandomEmployee(t *testing.T) {
	e := GenerateRandomEmployee(domain.ScheduleRef{Kind: domain.ScheduleKindShiftSchedule, ID: 7})

	ref, ok := e.Assignment()
	assert.True(t, ok)
	assert.Equal(t, domain.ScheduleRef{Kind: domain.ScheduleKindShiftSchedule, ID: 7}, ref)
	assert.True(t, e.IsActive)
	assert.NotEmpty(t, e.FullName)
	assert.NotEmpty(t, e.EmployeeCode)
}
