package scheduler

import (
	"cmp"
	"slices"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

func failAll(employeeID int64, req *domain.GenerationRequest, reason string) []domain.GenerationFailure {
	failures := make([]domain.GenerationFailure, 0, domain.DaysInclusive(req.StartDate, req.EndDate))
	for d := req.StartDate; !d.After(req.EndDate); d = d.AddDays(1) {
		failures = append(failures, domain.GenerationFailure{EmployeeID: employeeID, Date: d, Reason: reason})
	}
	return failures
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// 按员工、日期排序，方便展示
func sortFailures(failures []domain.GenerationFailure) {
	slices.SortFunc(failures, func(a, b domain.GenerationFailure) int {
		if c := cmp.Compare(a.EmployeeID, b.EmployeeID); c != 0 {
			return c
		}
		return cmp.Compare(a.Date.Ordinal(), b.Date.Ordinal())
	})
}
