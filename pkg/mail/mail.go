package mail

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/config"
)

// Message 待发送邮件
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender 根据配置创建发送器，未配置 API Key 时返回 NopSender
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled() {
		logger.Info("未配置 Resend API Key，邮件发送已禁用")
		return NopSender{}
	}
	return NewResendSender(resend.NewClient(cfg.ResendAPIKey), cfg.From, logger)
}

// ── Resend ──

// ResendSender 通过 Resend API 发送邮件
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender 创建 Resend 发送器
func NewResendSender(client *resend.Client, from string, logger *zap.Logger) *ResendSender {
	return &ResendSender{client: client, from: from, logger: logger}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend 发送失败: %w", err)
	}

	s.logger.Debug("邮件已发送", zap.String("message_id", sent.Id), zap.Strings("to", msg.To))
	return nil
}

// NopSender 丢弃所有邮件
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }

// WelcomeMessage 注册欢迎邮件
func WelcomeMessage(username, email string) Message {
	name := html.EscapeString(username)
	return Message{
		To:      []string{email},
		Subject: "Welcome to LiftLog",
		HTML: "<p>Hi " + name + ",</p>" +
			"<p>Your LiftLog account is ready. Create your first program to start planning blocks, weeks and training days.</p>",
		Text: "Hi " + username + ",\n\nYour LiftLog account is ready. Create your first program to start planning blocks, weeks and training days.\n",
	}
}
