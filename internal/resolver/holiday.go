package resolver

import (
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

type HolidayCalendar interface {
	IsHoliday(d domain.Date) bool
}

// HolidaySnapshot 是某一时间范围内假日的只读快照，生成任务开始时获取一次
type HolidaySnapshot struct {
	days map[int64]domain.Holiday
}

func NewHolidaySnapshot(holidays []domain.Holiday) *HolidaySnapshot {
	s := &HolidaySnapshot{days: make(map[int64]domain.Holiday, len(holidays))}
	for _, h := range holidays {
		// 同一天既有官方假日又有协议假日时保留官方的那条
		if existing, ok := s.days[h.Date.Ordinal()]; ok && existing.IsOfficial {
			continue
		}
		s.days[h.Date.Ordinal()] = h
	}
	return s
}

// IsHoliday 对官方假日和协议假日一视同仁
func (s *HolidaySnapshot) IsHoliday(d domain.Date) bool {
	if s == nil {
		return false
	}
	_, ok := s.days[d.Ordinal()]
	return ok
}

func (s *HolidaySnapshot) Get(d domain.Date) (domain.Holiday, bool) {
	if s == nil {
		return domain.Holiday{}, false
	}
	h, ok := s.days[d.Ordinal()]
	return h, ok
}

func (s *HolidaySnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.days)
}

// NoHolidays 用于不需要考虑假日的场景
type NoHolidays struct{}

func (NoHolidays) IsHoliday(domain.Date) bool { return false }
