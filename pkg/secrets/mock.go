package secrets

import (
	"context"
	"errors"
	"sync"
)

// MockProvider 可配置的 secrets mock，实现 Provider 接口
type MockProvider struct {
	mu      sync.Mutex
	Secrets map[string]string

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Secrets: map[string]string{
			TelegramBotToken: "mock-bot-token",
			SMTPPassword:     "mock-smtp-password",
		},
	}
}

func (m *MockProvider) GetSecret(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return "", errors.New("mock secret fetch failure")
	}

	value, ok := m.Secrets[name]
	if !ok {
		return "", errors.New("mock secret not found: " + name)
	}

	return value, nil
}
