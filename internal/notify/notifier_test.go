package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseplan/internal/domain"
	"github.com/gosuda/caseplan/internal/notify"
)

type fixedClock struct{ today domain.Date }

func (c fixedClock) Today() domain.Date { return c.today }

type fakeMessenger struct {
	channel string
	text    string
	err     error
}

func (m *fakeMessenger) SendMessage(_ context.Context, channelID, text string) error {
	if m.err != nil {
		return m.err
	}
	m.channel = channelID
	m.text = text
	return nil
}

func (m *fakeMessenger) Platform() string { return "fake" }

func TestNotifier_SendOverdue(t *testing.T) {
	t.Parallel()

	clock := fixedClock{today: domain.NewDate(2024, time.March, 4)}

	t.Run("digest_lists_each_task", func(t *testing.T) {
		t.Parallel()

		msgr := &fakeMessenger{}
		n := notify.New(msgr, "#ops", clock)

		tasks := []*domain.Task{
			{CaseID: "P_DE_001", Name: "rollout", End: domain.NewDate(2024, time.March, 1)},
			{CaseID: "P_DE_002", End: domain.NewDate(2024, time.February, 28)},
		}
		require.NoError(t, n.SendOverdue(context.Background(), tasks))

		assert.Equal(t, "#ops", msgr.channel)
		assert.Contains(t, msgr.text, "2 task(s) overdue as of 2024-03-04")
		assert.Contains(t, msgr.text, "P_DE_001 — rollout (due 2024-03-01)")
		assert.Contains(t, msgr.text, "P_DE_002 — (unnamed) (due 2024-02-28)")
	})

	t.Run("empty_digest_still_reports", func(t *testing.T) {
		t.Parallel()

		msgr := &fakeMessenger{}
		n := notify.New(msgr, "#ops", clock)

		require.NoError(t, n.SendOverdue(context.Background(), nil))
		assert.Equal(t, "No tasks overdue as of 2024-03-04.", msgr.text)
	})

	t.Run("send_failure_is_wrapped", func(t *testing.T) {
		t.Parallel()

		sendErr := errors.New("rate limited")
		n := notify.New(&fakeMessenger{err: sendErr}, "#ops", clock)

		err := n.SendOverdue(context.Background(), nil)
		assert.ErrorIs(t, err, sendErr)
	})
}
