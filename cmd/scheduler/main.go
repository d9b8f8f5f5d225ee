package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"DueBell/config"
	"DueBell/internal/schedule"
	"DueBell/pkg/logger"
	"DueBell/pkg/metrics"
	"DueBell/pkg/otel"
	"DueBell/pkg/secrets"
	"DueBell/pkg/snowflake"
	"DueBell/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	// 读取源失败时要给运维发 Telegram 告警，所以调度器也需要 secrets
	if err := secrets.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize secrets provider", zap.Error(err))
		logger.Logger.Info("Operator alerts may not work")
	}

	if config.Cfg.TracingEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:  config.Cfg.ServiceName + "-scheduler",
			Environment:  config.Cfg.Environment,
			OTLPEndpoint: config.Cfg.TracingEndpoint,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Logger.Warn("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()

			if err := metrics.InitMetrics(); err != nil {
				logger.Logger.Warn("Failed to initialize business metrics", zap.Error(err))
			}
		}
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runDailyEvaluationLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runDailyEvaluationLoop 每天固定时间执行一次到期评估
// 触发时刻由 RUN_HOUR / RUN_MINUTE 配置，默认本地时间 00:05
func runDailyEvaluationLoop(ctx context.Context) {
	s := schedule.GetScheduler()

	// 在 development 环境下，为了方便本地调试，将每日调度改为每 1 分钟执行一次
	if config.Cfg.Environment == "development" {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		logger.Logger.Info("Daily evaluation running in development mode with 1m interval")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				if err := s.RunDailyEvaluation(runCtx); err != nil {
					logger.Logger.Error("Daily evaluation run failed (development interval)", zap.Error(err))
				}
				cancel()
			}
		}
	}

	for {
		// 计算下一次运行时间（今天/明天的 RUN_HOUR:RUN_MINUTE）
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), config.Cfg.RunHour, config.Cfg.RunMinute, 0, 0, now.Location())
		if !next.After(now) {
			// 如果今天的触发时刻已经过了，则设置为明天
			next = next.Add(24 * time.Hour)
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next daily evaluation run",
			zap.Time("now", now),
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := s.RunDailyEvaluation(runCtx); err != nil {
				logger.Logger.Error("Daily evaluation run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
