package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/Greybash/ngo-service/internal/logger"
)

const defaultMailTimeout = 15 * time.Second

// Mailer 实际投递邮件
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer 未配置 SMTP 时只记录日志
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer 每封邮件单独建连，整个会话受 cfg.Timeout 限制
type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) timeout() time.Duration {
	if m.cfg.Timeout > 0 {
		return m.cfg.Timeout
	}
	return defaultMailTimeout
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("mail %q has no recipient", msg.Subject)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout())
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.cfg.Host, m.cfg.Port))
	if err != nil {
		return fmt.Errorf("连接邮件服务器失败: %w", err)
	}
	// 读写同样受时限约束，服务端不响应时不会挂起
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp 握手失败: %w", err)
	}
	defer c.Close()

	if err := m.deliver(c, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) deliver(c *smtp.Client, msg Message) error {
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	if m.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(m.cfg.FromAddr); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(m.render(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (m *SMTPMailer) render(msg Message) []byte {
	return []byte(fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"+
		"%s",
		m.cfg.FromName, m.cfg.FromAddr, msg.To, msg.Subject, msg.Body))
}

// LogMailer 开发环境使用
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info("Mail (not sent, smtp disabled) to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
