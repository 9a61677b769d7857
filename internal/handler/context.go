package handler

type ContextKey string

var (
	RoleCtxKey       ContextKey = "role"
	SubCtxKey        ContextKey = "sub"
	AtomicPatternCtx ContextKey = "atomicPattern"
	WeekPatternCtx   ContextKey = "weekPattern"
	ShiftScheduleCtx ContextKey = "shiftSchedule"
	EmployeeCtx      ContextKey = "employee"
)
