package telegram

import (
	"context"
	"errors"
	"sync"
)

type MockCall struct {
	ChatID string
	Text   string
	Markup *InlineKeyboardMarkup
}

// MockClient 可配置的 Telegram 客户端 mock，实现 Client 接口
type MockClient struct {
	mu    sync.Mutex
	Calls []MockCall

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]MockCall, 0),
	}
}

func (m *MockClient) SendMessage(ctx context.Context, chatID, text string, markup *InlineKeyboardMarkup) (*SendResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{
		ChatID: chatID,
		Text:   text,
		Markup: markup,
	})

	if m.FailNext {
		m.FailNext = false
		return nil, errors.New("mock telegram send failure")
	}

	return &SendResponse{
		MessageID: int64(len(m.Calls)),
		ChatID:    chatID,
	}, nil
}

func (m *MockClient) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return errors.New("mock telegram answer failure")
	}

	return nil
}
