package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"DueBell/config"
	"DueBell/pkg/errors"
	"DueBell/pkg/logger"
	"DueBell/pkg/response"
)

// WebhookAuthMiddleware 共享 token 鉴权，保护回执 webhook 和运维接口
// 未配置 WEBHOOK_TOKEN 时直接放行（本地调试场景），启动时已有 WARN
func WebhookAuthMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		token := config.Cfg.WebhookToken
		if token == "" {
			c.Next(ctx)
			return
		}

		provided := string(c.GetHeader("X-Webhook-Token"))
		if provided == "" {
			// Telegram 官方 webhook 用的是这个 header
			provided = string(c.GetHeader("X-Telegram-Bot-Api-Secret-Token"))
		}
		if provided == "" {
			auth := string(c.GetHeader("Authorization"))
			provided = strings.TrimPrefix(auth, "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			logger.Logger.Warn("Webhook request rejected",
				zap.String("path", string(c.Path())),
				zap.String("client_ip", c.ClientIP()),
			)
			response.Error(ctx, c, errors.Unauthorized)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}
