package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPClient 基于 net/smtp 的实现，走 STARTTLS 端口 + PLAIN 认证
type SMTPClient struct {
	host     string
	port     string
	username string
	password string
	from     string
	to       []string
}

func NewSMTPClient(host, port, username, password, from string, to []string) *SMTPClient {
	return &SMTPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
	}
}

func (c *SMTPClient) Send(ctx context.Context, subject, body string) error {
	addr := net.JoinHostPort(c.host, c.port)

	msg := buildMessage(c.from, c.to, subject, body)
	auth := smtp.PlainAuth("", c.username, c.password, c.host)

	// net/smtp 不接受 context，用 goroutine + select 保证调用方超时可控
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, c.from, c.to, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp send cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s failed: %w", addr, err)
		}
		return nil
	}
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var sb strings.Builder

	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")

	return []byte(sb.String())
}
