package notify

import (
	"context"

	"DueBell/pkg/mailer"
)

const ChannelEmail = "email"

// EmailChannel 邮件渠道，长正文，适合归档
type EmailChannel struct {
	client mailer.Client
}

func NewEmailChannel(client mailer.Client) *EmailChannel {
	return &EmailChannel{client: client}
}

func (c *EmailChannel) Name() string {
	return ChannelEmail
}

func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	return c.client.Send(ctx, msg.Subject, msg.Body)
}
