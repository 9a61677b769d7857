package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

// ClockTime 表示一天中的墙上时间，以距离 00:00 的分钟数存储，取值范围为 [0, 1440)
type ClockTime int32

func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("非法的时间 %02d:%02d", hour, minute)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime 只用于常量数据和测试
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClockTime 接受 "15:04" 和 "15:04:05" 两种格式，秒会被舍去
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)

	layouts := []string{"15:04", "15:04:05", "15:04:05.999999"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return ClockTime(t.Hour()*60 + t.Minute()), nil
		}
	}

	return 0, fmt.Errorf("时间格式错误: %q", s)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }
func (c ClockTime) Minutes() int {
	return int(c)
}

func (c ClockTime) Valid() bool { return c >= 0 && c < MinutesPerDay }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On 返回指定日期、指定时区下的绝对时刻
func (c ClockTime) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value 以 postgres TIME 能接受的格式写入
func (c ClockTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", c.Hour(), c.Minute()), nil
}

func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		parsed, err := ParseClockTime(string(v))
		if err != nil {
			return err
		}
		*c = parsed
	case time.Time:
		*c = ClockTime(v.Hour()*60 + v.Minute())
	default:
		return fmt.Errorf("无法将 %T 解析为 ClockTime", src)
	}
	return nil
}

// SpanMinutes 计算从 start 到 end 的分钟数，end <= start 时视为跨越午夜
func SpanMinutes(start, end ClockTime) (minutes int, spansNextDay bool) {
	if end <= start {
		return (MinutesPerDay - int(start)) + int(end), true
	}
	return int(end) - int(start), false
}
