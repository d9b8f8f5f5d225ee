package notify

import (
	"context"

	"DueBell/internal/model"
)

// Message 一条渠道无关的通知载荷，渠道各取所需
type Message struct {
	Subject string // 邮件主题
	Body    string // 长正文，带明细字段
	Short   string // 即时消息用的短文本
	Event   model.ReminderEvent
}

// Channel 通知渠道，实现方自行处理传输层超时
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Outcome 单渠道投递结果
type Outcome struct {
	Sent   bool
	Reason string // 失败原因，成功时为空
}

// String 持久化到 channel_outcomes 的表示
func (o Outcome) String() string {
	if o.Sent {
		return model.OutcomeSent
	}
	return model.OutcomeFailed + ": " + o.Reason
}
