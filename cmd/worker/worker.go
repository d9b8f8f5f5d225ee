package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"DueBell/config"
	"DueBell/internal/queue"
	"DueBell/internal/service"
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

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 渠道凭证统一走 secrets provider，拿不到就起不来
	if err := secrets.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize secrets provider", zap.Error(err))
	}

	if config.Cfg.TracingEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:  config.Cfg.ServiceName + "-worker",
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

	// 构建通知渠道并组装投递服务；已启用渠道的凭证缺失属于配置错误
	dispatchService, err := service.InitDispatch(ctx)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize dispatch service", zap.Error(err))
	}

	// 设置投递服务, 因为所有消费者都需要这一环节
	queue.SetDispatchService(dispatchService)

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
