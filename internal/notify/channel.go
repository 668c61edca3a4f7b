package notify

import (
	"context"
	"errors"

	"statewatch/internal/directory"
)

// ErrSkip marks a recipient a channel cannot address (disabled account,
// no email on file). The dispatcher records a skip instead of a
// delivery failure.
var ErrSkip = errors.New("recipient skipped")

// Channel delivers one composed message to one user. Send failures are
// isolated per recipient by the dispatcher; a channel should never
// retry internally beyond its own request timeout.
type Channel interface {
	Name() string
	Send(ctx context.Context, user directory.User, msg Message) error
}

func deliverable(user directory.User) error {
	if !user.Enabled {
		return ErrSkip
	}
	return nil
}
