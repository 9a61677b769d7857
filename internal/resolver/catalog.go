package resolver

import (
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// Catalog 是一次解析过程中使用的原子模板快照，构建后只读
type Catalog struct {
	patterns map[int64]domain.AtomicPattern
}

func NewCatalog(patterns []*domain.AtomicPattern) *Catalog {
	c := &Catalog{patterns: make(map[int64]domain.AtomicPattern, len(patterns))}
	for _, p := range patterns {
		cp := *p
		cp.DurationMinutes = cp.ComputedDuration()
		c.patterns[cp.ID] = cp
	}
	return c
}

// Get 返回模板的副本，调用方修改不会影响快照
func (c *Catalog) Get(id int64) (domain.AtomicPattern, bool) {
	if c == nil {
		return domain.AtomicPattern{}, false
	}
	p, ok := c.patterns[id]
	return p, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.patterns)
}
