// Package notify sends the on-demand overdue digest through a chat
// messenger. Nothing here is scheduled; the digest goes out only when the
// notify endpoint is hit.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosuda/caseplan/internal/domain"
)

// Messenger abstracts the outbound path of a chat platform.
// Implementations handle platform-specific API calls.
type Messenger interface {
	// SendMessage posts a text message to a channel.
	SendMessage(ctx context.Context, channelID, text string) error

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}

// Notifier formats and sends the overdue digest.
type Notifier struct {
	messenger Messenger
	channel   string
	clock     domain.Clock
}

// New creates a Notifier posting to the given channel.
func New(messenger Messenger, channel string, clock domain.Clock) *Notifier {
	return &Notifier{
		messenger: messenger,
		channel:   channel,
		clock:     clock,
	}
}

// SendOverdue posts one digest message listing the given overdue tasks.
func (n *Notifier) SendOverdue(ctx context.Context, tasks []*domain.Task) error {
	if err := n.messenger.SendMessage(ctx, n.channel, n.format(tasks)); err != nil {
		return fmt.Errorf("notify.Notifier.SendOverdue: %w", err)
	}
	return nil
}

func (n *Notifier) format(tasks []*domain.Task) string {
	today := n.clock.Today()
	if len(tasks) == 0 {
		return fmt.Sprintf("No tasks overdue as of %s.", today)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d task(s) overdue as of %s:\n", len(tasks), today)
	for _, t := range tasks {
		name := t.Name
		if name == "" {
			name = "(unnamed)"
		}
		label := t.CaseID
		if label == "" {
			label = "(no case)"
		}
		fmt.Fprintf(&b, "• %s — %s (due %s)\n", label, name, t.End)
	}
	return strings.TrimRight(b.String(), "\n")
}
