package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"DueBell/config"
	"DueBell/internal/notify"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/pkg/mailer"
	"DueBell/pkg/secrets"
	"DueBell/pkg/telegram"
)

// BuildChannels 根据配置和 secrets 构建启用的通知渠道
// 任一已启用渠道取不到凭证视为配置错误，直接失败
func BuildChannels(ctx context.Context) ([]notify.Channel, error) {
	var channels []notify.Channel

	if config.Cfg.TelegramEnabled && config.Cfg.TelegramChatID != "" {
		client, err := telegramClient(ctx)
		if err != nil {
			return nil, err
		}
		channels = append(channels, notify.NewTelegramChannel(client, config.Cfg.TelegramChatID))
	}

	if config.Cfg.EmailEnabled && config.Cfg.SMTPHost != "" {
		password, err := secrets.GetSecret(ctx, secrets.SMTPPassword)
		if err != nil {
			logger.Logger.Error("Failed to load SMTP password",
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", errors.SecretUnavailable, err)
		}

		to := splitRecipients(config.Cfg.EmailTo)
		client := mailer.NewSMTPClient(
			config.Cfg.SMTPHost,
			config.Cfg.SMTPPort,
			config.Cfg.SMTPUsername,
			password,
			config.Cfg.EmailFrom,
			to,
		)
		channels = append(channels, notify.NewEmailChannel(client))
	}

	if len(channels) == 0 {
		return nil, errors.NoChannelEnabled
	}

	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name())
	}
	logger.Logger.Info("Notification channels ready",
		zap.Strings("channels", names),
	)

	return channels, nil
}

func telegramClient(ctx context.Context) (telegram.Client, error) {
	token, err := secrets.GetSecret(ctx, secrets.TelegramBotToken)
	if err != nil {
		logger.Logger.Error("Failed to load Telegram bot token",
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", errors.SecretUnavailable, err)
	}

	timeout := time.Duration(config.Cfg.TelegramTimeoutMS) * time.Millisecond
	return telegram.NewBotClient(config.Cfg.TelegramAPIBase, token, timeout), nil
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AcknowledgeCallback 回应 Telegram 按钮回调，尽力而为
func AcknowledgeCallback(ctx context.Context, callbackQueryID, text string) {
	if !config.Cfg.TelegramEnabled {
		return
	}

	client, err := telegramClient(ctx)
	if err != nil {
		logger.Logger.Warn("Cannot build Telegram client to answer callback",
			zap.Error(err),
		)
		return
	}

	if err := client.AnswerCallbackQuery(ctx, callbackQueryID, text); err != nil {
		logger.Logger.Warn("Failed to answer callback query",
			zap.String("callback_query_id", callbackQueryID),
			zap.Error(err),
		)
	}
}

// operatorAlert 向运维 Telegram 群发送严重故障告警，尽力而为
func operatorAlert(ctx context.Context, text string) {
	if !config.Cfg.TelegramEnabled || config.Cfg.TelegramChatID == "" {
		logger.Logger.Warn("Operator alert skipped, Telegram not configured",
			zap.String("alert", text),
		)
		return
	}

	client, err := telegramClient(ctx)
	if err != nil {
		logger.Logger.Error("Operator alert failed, cannot build Telegram client",
			zap.String("alert", text),
			zap.Error(err),
		)
		return
	}

	if _, err := client.SendMessage(ctx, config.Cfg.TelegramChatID, "🚨 "+text, nil); err != nil {
		logger.Logger.Error("Operator alert delivery failed",
			zap.String("alert", text),
			zap.Error(err),
		)
	}
}
