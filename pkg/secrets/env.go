package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider 从环境变量读取 secret
// 名称映射规则：telegram-bot-token -> <prefix>TELEGRAM_BOT_TOKEN
type EnvProvider struct {
	prefix string
}

func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	key := p.prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("secret %q not found in environment (%s)", name, key)
	}

	return value, nil
}
