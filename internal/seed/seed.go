package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/utils"
)

// Store 由 repository.Repository 实现
type Store interface {
	GetAllAtomicPatterns(ctx context.Context) ([]*domain.AtomicPattern, error)
	CreateAtomicPattern(ctx context.Context, p *domain.AtomicPattern) error
	GetWeekPatternByName(ctx context.Context, name string) (*domain.WeekPattern, error)
	CreateWeekPattern(ctx context.Context, wp *domain.WeekPattern) error
	GetShiftScheduleByName(ctx context.Context, name string) (*domain.ShiftSchedule, error)
	CreateShiftSchedule(ctx context.Context, ss *domain.ShiftSchedule) error
	CreateEmployee(ctx context.Context, e *domain.Employee) error
	UpsertHoliday(ctx context.Context, h *domain.Holiday) error
}

const (
	StandardWeekName   = "Standard"
	FourOnTwoOffName   = "4-on/2-off"
	TwentyFourPostName = "24/48"
)

// 轮班表的周期起点，1403 年新年
var cycleStart = domain.MustDate("2024-03-20")

func clock(s string) *domain.ClockTime {
	c := domain.MustClockTime(s)
	return &c
}

func StandardAtomicPatterns() []*domain.AtomicPattern {
	return []*domain.AtomicPattern{
		{Name: "Office 08-16", Kind: domain.PatternKindFixed, StartTime: domain.MustClockTime("08:00"), EndTime: domain.MustClockTime("16:00")},
		{Name: "Day 07-15", Kind: domain.PatternKindFixed, StartTime: domain.MustClockTime("07:00"), EndTime: domain.MustClockTime("15:00")},
		{Name: "Night 22-06", Kind: domain.PatternKindFixed, StartTime: domain.MustClockTime("22:00"), EndTime: domain.MustClockTime("06:00")},
		{Name: "Post 24h", Kind: domain.PatternKindFixed, StartTime: domain.MustClockTime("08:00"), EndTime: domain.MustClockTime("08:00")},
	}
}

// StandardWeek 周六至周三 08:00-16:00，周四周五休息
func StandardWeek(office *domain.AtomicPattern) *domain.WeekPattern {
	wp := &domain.WeekPattern{
		Name:                 StandardWeekName,
		FloatingStartMinutes: 15,
		FloatingEndMinutes:   15,
	}
	for d := int32(0); d < 7; d++ {
		day := domain.WeekPatternDay{DayOfWeek: d}
		if d < 5 {
			id := office.ID
			day.IsWorkingDay = true
			day.StartTime = clock(office.StartTime.String())
			day.EndTime = clock(office.EndTime.String())
			day.WorkPatternID = &id
		}
		wp.Days = append(wp.Days, day)
	}
	return wp
}

// FourOnTwoOff 两个白班、两个夜班，然后休息两天
func FourOnTwoOff(dayShift, nightShift *domain.AtomicPattern) *domain.ShiftSchedule {
	ss := &domain.ShiftSchedule{
		Name:                 FourOnTwoOffName,
		CycleLengthDays:      6,
		CycleStartDate:       cycleStart,
		FloatingStartMinutes: 10,
		FloatingEndMinutes:   10,
	}
	for i := int32(1); i <= ss.CycleLengthDays; i++ {
		slot := domain.ScheduleSlot{DayInCycle: i}
		switch {
		case i <= 2:
			id := dayShift.ID
			slot.WorkPatternID = &id
		case i <= 4:
			id := nightShift.ID
			slot.WorkPatternID = &id
		}
		ss.Slots = append(ss.Slots, slot)
	}
	return ss
}

// TwentyFourFortyEight 值守岗位，上 24 小时休 48 小时，假日照常上班
func TwentyFourFortyEight(post *domain.AtomicPattern) *domain.ShiftSchedule {
	id := post.ID
	return &domain.ShiftSchedule{
		Name:            TwentyFourPostName,
		CycleLengthDays: 3,
		CycleStartDate:  cycleStart,
		IgnoreHolidays:  true,
		Slots: []domain.ScheduleSlot{
			{DayInCycle: 1, WorkPatternID: &id},
			{DayInCycle: 2},
			{DayInCycle: 3},
		},
	}
}

type Catalog struct {
	Patterns     map[string]*domain.AtomicPattern
	StandardWeek *domain.WeekPattern
	FourOnTwoOff *domain.ShiftSchedule
	Post         *domain.ShiftSchedule
}

// SeedCatalog 写入标准排班目录，已经存在的同名记录直接复用，因此可以重复执行
func SeedCatalog(ctx context.Context, s Store) (*Catalog, error) {
	existing, err := s.GetAllAtomicPatterns(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Patterns: make(map[string]*domain.AtomicPattern)}
	for _, p := range existing {
		catalog.Patterns[p.Name] = p
	}

	for _, p := range StandardAtomicPatterns() {
		if _, ok := catalog.Patterns[p.Name]; ok {
			continue
		}
		if err := utils.ValidateAtomicPattern(p); err != nil {
			return nil, err
		}
		if err := s.CreateAtomicPattern(ctx, p); err != nil {
			return nil, fmt.Errorf("插入原子模板 %s 失败: %w", p.Name, err)
		}
		catalog.Patterns[p.Name] = p
	}

	catalog.StandardWeek, err = s.GetWeekPatternByName(ctx, StandardWeekName)
	switch {
	case errors.Is(err, domain.ErrScheduleNotFound):
		wp := StandardWeek(catalog.Patterns["Office 08-16"])
		if err := utils.ValidateWeekPattern(wp); err != nil {
			return nil, err
		}
		if err := s.CreateWeekPattern(ctx, wp); err != nil {
			return nil, fmt.Errorf("插入周模式失败: %w", err)
		}
		catalog.StandardWeek = wp
	case err != nil:
		return nil, err
	}

	schedules := []struct {
		target **domain.ShiftSchedule
		build  func() *domain.ShiftSchedule
		name   string
	}{
		{&catalog.FourOnTwoOff, func() *domain.ShiftSchedule {
			return FourOnTwoOff(catalog.Patterns["Day 07-15"], catalog.Patterns["Night 22-06"])
		}, FourOnTwoOffName},
		{&catalog.Post, func() *domain.ShiftSchedule {
			return TwentyFourFortyEight(catalog.Patterns["Post 24h"])
		}, TwentyFourPostName},
	}
	for _, item := range schedules {
		ss, err := s.GetShiftScheduleByName(ctx, item.name)
		switch {
		case errors.Is(err, domain.ErrScheduleNotFound):
			ss = item.build()
			if err := utils.ValidateShiftSchedule(ss); err != nil {
				return nil, err
			}
			if err := s.CreateShiftSchedule(ctx, ss); err != nil {
				return nil, fmt.Errorf("插入轮班表 %s 失败: %w", item.name, err)
			}
		case err != nil:
			return nil, err
		}
		*item.target = ss
	}

	return catalog, nil
}

// SeedEmployees 插入 n 个分配到 ref 的随机员工，返回成功插入的数量
func SeedEmployees(ctx context.Context, s Store, ref domain.ScheduleRef, n int) int {
	cnt := 0
	for i := 0; i < n; i++ {
		e := utils.GenerateRandomEmployee(ref)

		err := s.CreateEmployee(ctx, e)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "employees_employee_code_key" {
			// 工号撞车时换一个再试一次
			e.EmployeeCode = utils.GenerateEmployeeCodeFromChineseName(e.FullName)
			err = s.CreateEmployee(ctx, e)
		}
		if err != nil {
			slog.Error("无法插入员工", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}
	return cnt
}

// ReadHolidays 读取 date,name,is_official 格式的假日表，第一行为表头
func ReadHolidays(r io.Reader) ([]domain.Holiday, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	if strings.Join(header, ",") != "date,name,is_official" {
		return nil, fmt.Errorf("表头错误: %v", header)
	}

	var holidays []domain.Holiday
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		d, err := domain.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		official, err := strconv.ParseBool(row[2])
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: is_official 不是布尔值: %q", line, row[2])
		}
		if row[1] == "" {
			return nil, fmt.Errorf("第 %d 行: 假日名称不能为空", line)
		}

		holidays = append(holidays, domain.Holiday{Date: d, Name: row[1], IsOfficial: official})
	}

	return holidays, nil
}

// SeedHolidays 导入假日文件，按 (date, name) 覆盖写入
func SeedHolidays(ctx context.Context, s Store, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	holidays, err := ReadHolidays(file)
	if err != nil {
		return 0, err
	}

	for i := range holidays {
		if err := s.UpsertHoliday(ctx, &holidays[i]); err != nil {
			return i, fmt.Errorf("写入假日 %s 失败: %w", holidays[i].Date, err)
		}
	}

	return len(holidays), nil
}
