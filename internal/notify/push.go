package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"statewatch/internal/config"
	"statewatch/internal/directory"
	"statewatch/internal/services"
)

const pushUserAgent = "statewatch/0.1.0"

// PushChannel posts messages to an ntfy-style topic. It is a broadcast
// channel: the topic is shared, so the recipient's name is folded into
// the body instead of addressing the request.
type PushChannel struct {
	endpoint string
	client   *http.Client
}

// NewPushChannel builds the ntfy channel, or nil when no topic is
// configured; callers treat a nil channel as disabled.
func NewPushChannel(cfg config.Push) *PushChannel {
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PushChannel{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) Send(ctx context.Context, user directory.User, msg Message) error {
	if err := deliverable(user); err != nil {
		return err
	}

	body := msg.Body
	if name := strings.TrimSpace(user.FullName); name != "" {
		body = fmt.Sprintf("For %s:\n%s", name, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrDelivery, "notify", "push", "build request", err)
	}
	req.Header.Set("User-Agent", pushUserAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", msg.Subject)
	req.Header.Set("Tags", "statewatch,workflow")
	if msg.Link != "" {
		req.Header.Set("Click", msg.Link)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrDelivery, "notify", "push", "send notification", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrDelivery, "notify", "push",
			fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
