package notify

import (
	"context"

	"DueBell/pkg/telegram"
)

const ChannelTelegram = "telegram"

// TelegramChannel 即时消息渠道，短文本 + mark-handled 按钮
type TelegramChannel struct {
	client telegram.Client
	chatID string
}

func NewTelegramChannel(client telegram.Client, chatID string) *TelegramChannel {
	return &TelegramChannel{
		client: client,
		chatID: chatID,
	}
}

func (c *TelegramChannel) Name() string {
	return ChannelTelegram
}

func (c *TelegramChannel) Send(ctx context.Context, msg Message) error {
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{
					Text:         "✅ Mark handled",
					CallbackData: CallbackData(msg.Event),
				},
			},
		},
	}

	_, err := c.client.SendMessage(ctx, c.chatID, msg.Short, markup)
	return err
}
