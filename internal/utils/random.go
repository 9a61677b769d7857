package utils

import (
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmployeeCodeFromChineseName 取每个字拼音的前若干个字母，再拼上几位随机数字
func GenerateEmployeeCodeFromChineseName(chineseName string) string {
	var sb strings.Builder

	for _, py := range pinyin.LazyConvert(chineseName, nil) {
		length := rand.Intn(len(py)) + 1
		sb.WriteString(py[:length])
	}

	digitsLength := rand.Intn(3) + 2
	for i := 0; i < digitsLength; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}

	return sb.String()
}

// GenerateRandomEmployee 生成一个分配到 ref 的在职员工
func GenerateRandomEmployee(ref domain.ScheduleRef) *domain.Employee {
	fullName := GenerateRandomChineseName()
	e := &domain.Employee{
		EmployeeCode: GenerateEmployeeCodeFromChineseName(fullName),
		FullName:     fullName,
		IsActive:     true,
	}

	id := ref.ID
	switch ref.Kind {
	case domain.ScheduleKindWeekPattern:
		e.WeekPatternID = &id
	case domain.ScheduleKindShiftSchedule:
		e.ShiftScheduleID = &id
	}

	return e
}
