package secrets

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"DueBell/config"
	"DueBell/pkg/logger"
)

// 渠道凭证统一从这里取，每次 invocation 取一次，不跨 invocation 缓存

// 约定的 secret 名称
const (
	TelegramBotToken = "telegram-bot-token"
	SMTPPassword     = "smtp-password"
)

// Provider secret 提供方接口
type Provider interface {
	// GetSecret 按名称取 secret，取不到即返回错误
	GetSecret(ctx context.Context, name string) (string, error)
}

var (
	provider Provider
	once     sync.Once
	initErr  error
)

// Init 初始化 secrets provider
func Init() error {
	once.Do(func() {
		cfg := config.Cfg

		switch cfg.SecretsProvider {
		case "env":
			provider = NewEnvProvider(cfg.SecretsEnvPrefix)
		case "mock":
			provider = NewMockProvider()
		default:
			initErr = fmt.Errorf("unsupported secrets provider: %s", cfg.SecretsProvider)
		}

		if initErr != nil {
			logger.Logger.Error("Failed to initialize secrets provider", zap.Error(initErr))
			return
		}

		logger.Logger.Info("Secrets provider initialized successfully",
			zap.String("provider", cfg.SecretsProvider),
		)
	})

	return initErr
}

func GetProvider() Provider {
	if provider == nil {
		panic("secrets provider not initialized, call secrets.Init() first")
	}
	return provider
}

func GetSecret(ctx context.Context, name string) (string, error) {
	return GetProvider().GetSecret(ctx, name)
}
