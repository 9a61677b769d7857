package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret    string `env:"SECRET,required"`
		AdminRole string `env:"ADMIN_ROLE" envDefault:"admin"`
	} `envPrefix:"JWT_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD,required"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Generation struct {
		Concurrency   int    `env:"CONCURRENCY" envDefault:"8"`
		BatchSize     int    `env:"BATCH_SIZE" envDefault:"500"`
		MaxRangeDays  int    `env:"MAX_RANGE_DAYS" envDefault:"366"`
		WeekStart     string `env:"WEEK_START" envDefault:"saturday"`
		Timezone      string `env:"TIMEZONE" envDefault:"Asia/Tehran"`
		RejectOverlap bool   `env:"REJECT_OVERLAP" envDefault:"true"`
		JobExpiration int    `env:"JOB_EXPIRATION" envDefault:"86400"` // 1 天
		Timeout       int    `env:"TIMEOUT" envDefault:"1800"`
		Queue         string `env:"QUEUE" envDefault:"shift_generation_queue"`
		DoneQueue     string `env:"DONE_QUEUE" envDefault:"shift_generation_done_queue"`
	} `envPrefix:"GENERATION_"`
	Seed struct {
		HolidaysFile string `env:"HOLIDAYS_FILE" envDefault:"./internal/seed/data/holidays.csv"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	// .env 文件只在本地开发时存在，找不到就直接使用环境变量
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Generation.Concurrency < 1 {
		return nil, fmt.Errorf("GENERATION_CONCURRENCY 必须大于 0")
	}
	if cfg.Generation.BatchSize < 1 {
		return nil, fmt.Errorf("GENERATION_BATCH_SIZE 必须大于 0")
	}
	if _, err := cfg.WeekStart(); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekStart 返回 day_of_week = 0 所对应的星期
func (c *Config) WeekStart() (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(c.Generation.WeekStart))]
	if !ok {
		return 0, fmt.Errorf("无法识别的 GENERATION_WEEK_START: %q", c.Generation.WeekStart)
	}
	return wd, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Generation.Timezone)
	if err != nil {
		return nil, fmt.Errorf("无法加载时区 %q: %w", c.Generation.Timezone, err)
	}
	return loc, nil
}
