package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/jobs"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/resolver"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/worker"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	weekStart, err := cfg.WeekStart()
	if err != nil {
		logger.Error("无法解析星期约定", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", slog.String("error", err.Error()))
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancelPing()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", slog.String("error", err.Error()))
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	tracker := jobs.NewTracker(rdb, time.Duration(cfg.Generation.JobExpiration)*time.Second)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	publishTimeout := time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second
	q, err := jobs.DeclareQueue(ch, cfg.Generation.Queue, publishTimeout)
	if err != nil {
		logger.Error("无法声明任务队列", slog.String("error", err.Error()))
		return
	}
	doneQueue, err := jobs.DeclareQueue(ch, cfg.Generation.DoneQueue, publishTimeout)
	if err != nil {
		logger.Error("无法声明完成队列", slog.String("error", err.Error()))
		return
	}

	// 一次只取一条任务，生成本身已经是并发的
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建排班生成器
	 **********************************************/
	generator := scheduler.New(&scheduler.Parameters{
		Concurrency:  cfg.Generation.Concurrency,
		BatchSize:    cfg.Generation.BatchSize,
		MaxRangeDays: cfg.Generation.MaxRangeDays,
		Convention:   resolver.Convention{WeekStart: weekStart},
	}, repo, repo, repo, repo)

	w := worker.New(generator, tracker, doneQueue, logger, time.Duration(cfg.Generation.Timeout)*time.Second)

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name(), // 队列
		"",       // 消费者标识由 RabbitMQ 自动分配
		false,    // 手动确认
		false,    // 不独占队列
		false,    // RabbitMQ 不支持 noLocal
		false,    // 等待 RabbitMQ 响应
		nil,
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文，正在执行的任务会被取消，已写入的部分保留
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}
				logger.Info("收到生成任务", slog.String("message_id", msg.MessageId))

				switch w.Handle(ctx, msg.Body) {
				case worker.AckDiscard:
					_ = msg.Nack(false, false)
				default:
					_ = msg.Ack(false)
				}
			}
		}
	}()

	logger.Info("等待生成任务...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	logger.Info("正在关闭 worker...")
	cancel()
	wg.Wait()
	logger.Info("worker 已成功关闭")
}
