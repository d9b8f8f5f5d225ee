package telegram

import (
	"context"
)

// Client Telegram Bot API 客户端接口
type Client interface {
	// SendMessage 发送一条消息
	// chatID: 目标会话
	// text: 消息正文（Markdown）
	// markup: 可选的 inline keyboard，nil 表示纯文本消息
	SendMessage(ctx context.Context, chatID, text string, markup *InlineKeyboardMarkup) (*SendResponse, error)

	// AnswerCallbackQuery 响应按钮回调，让客户端停止 loading 状态
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

// InlineKeyboardMarkup inline 按钮布局
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton 单个按钮，CallbackData 会原样回传到 webhook
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// SendResponse 发送结果
type SendResponse struct {
	MessageID int64
	ChatID    string
}

// CallbackQuery webhook 收到的按钮回调载荷（Bot API Update 的子集）
type CallbackQuery struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// Update Bot API webhook 推送的更新，只保留回调部分
type Update struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}
