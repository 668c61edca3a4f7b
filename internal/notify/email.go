package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/services"
)

// EmailChannel delivers messages over SMTP. Recipients without an
// email address, and disabled accounts, are skipped rather than failed.
type EmailChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration

	// sendMail is swapped in tests; production uses smtp.SendMail.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailChannel builds the SMTP channel from validated configuration.
func NewEmailChannel(cfg config.Email) *EmailChannel {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EmailChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		timeout:  timeout,
		sendMail: smtp.SendMail,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, user directory.User, msg Message) error {
	if err := deliverable(user); err != nil {
		return err
	}
	if strings.TrimSpace(user.Email) == "" {
		return ErrSkip
	}

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	body := c.render(user, msg)

	// smtp.SendMail has no context hook; bound it with a goroutine so a
	// stalled server cannot hold the save pipeline open.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.sendMail(addr, auth, c.from, []string{user.Email}, body)
	}()
	select {
	case err := <-done:
		if err != nil {
			return services.Wrap(services.ErrDelivery, "notify", "email", "smtp send failed", err)
		}
		return nil
	case <-ctx.Done():
		return services.Wrap(services.ErrDelivery, "notify", "email", "smtp send timed out", ctx.Err())
	}
}

func (c *EmailChannel) render(user directory.User, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.from)
	fmt.Fprintf(&b, "To: %s\r\n", user.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
