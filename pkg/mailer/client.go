package mailer

import (
	"context"
)

// Client 邮件发送接口
type Client interface {
	// Send 发送一封纯文本邮件
	Send(ctx context.Context, subject, body string) error
}
