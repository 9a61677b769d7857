package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var scheduleKind string
	var scheduleID int64
	var holidaysFile string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入标准排班目录, 2: 插入随机员工, 3: 导入假日, 4: 全部)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量")
	flag.StringVar(&scheduleKind, "schedule-kind", string(domain.ScheduleKindWeekPattern), "随机员工分配的排班类型 (week_pattern 或 shift_schedule)")
	flag.Int64Var(&scheduleID, "schedule-id", 0, "随机员工分配的排班 ID")
	flag.StringVar(&holidaysFile, "holidays", "", "假日文件路径，默认使用配置中的 SEED_HOLIDAYS_FILE")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if holidaysFile == "" {
		holidaysFile = cfg.Seed.HolidaysFile
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	ctx = context.Background()
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		catalog, err := seed.SeedCatalog(ctx, repo)
		if err != nil {
			slog.Error("无法插入排班目录", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入排班目录成功",
			slog.Int64("week_pattern_id", catalog.StandardWeek.ID),
			slog.Int64("four_on_two_off_id", catalog.FourOnTwoOff.ID),
			slog.Int64("post_id", catalog.Post.ID),
		)
	case 2:
		kind := domain.ScheduleKind(scheduleKind)
		if !kind.Valid() || scheduleID <= 0 {
			slog.Error("请输入合法的排班类型和排班 ID")
			return
		}
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		cnt := seed.SeedEmployees(ctx, repo, domain.ScheduleRef{Kind: kind, ID: scheduleID}, n)
		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 3:
		cnt, err := seed.SeedHolidays(ctx, repo, holidaysFile)
		if err != nil {
			slog.Error("无法导入假日", slog.String("error", err.Error()))
			return
		}
		slog.Info("导入假日成功", slog.Int("count", cnt))
	case 4:
		catalog, err := seed.SeedCatalog(ctx, repo)
		if err != nil {
			slog.Error("无法插入排班目录", slog.String("error", err.Error()))
			return
		}

		holidays, err := seed.SeedHolidays(ctx, repo, holidaysFile)
		if err != nil {
			slog.Error("无法导入假日", slog.String("error", err.Error()))
			return
		}

		refs := []domain.ScheduleRef{
			{Kind: domain.ScheduleKindWeekPattern, ID: catalog.StandardWeek.ID},
			{Kind: domain.ScheduleKindShiftSchedule, ID: catalog.FourOnTwoOff.ID},
			{Kind: domain.ScheduleKindShiftSchedule, ID: catalog.Post.ID},
		}
		employees := 0
		for _, ref := range refs {
			employees += seed.SeedEmployees(ctx, repo, ref, n)
		}

		slog.Info("插入数据完成", slog.Int("holidays", holidays), slog.Int("employees", employees))
	default:
		slog.Error("指定的操作非法")
	}
}
