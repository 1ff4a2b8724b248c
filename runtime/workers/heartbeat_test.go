package workers

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"group-messaging/domain"

	"github.com/stretchr/testify/require"
)

type staticSource struct{}

func (staticSource) Status() domain.SessionStatus { return domain.LoggedIn }
func (staticSource) Buddies() []domain.Buddy      { return nil }
func (staticSource) Tabs() []domain.Tab {
	return []domain.Tab{{Label: "bob"}, {Label: "carol", IsActive: true}}
}
func (staticSource) Conversations() []string { return []string{"bob", "carol"} }

type staticUnread map[string]int

func (u staticUnread) Snapshot() map[string]int { return u }

func TestHeartbeatWorker_Logs_Engine_Summary(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	w := NewHeartbeatWorker(log, staticSource{}, staticUnread{"bob": 2, "Everyone": 1}, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// When the worker ticks until the deadline
	err := w.Run(ctx)

	// Then it stops with the context and reported the tables
	req.ErrorIs(err, context.DeadlineExceeded)
	req.Contains(out.String(), "Engine heartbeat")
	req.Contains(out.String(), "active_tab=carol")
	req.Contains(out.String(), "tabs=2")
	req.Contains(out.String(), "unread=3")
}

func TestHeartbeatWorker_Default_Interval(t *testing.T) {
	w := NewHeartbeatWorker(slog.Default(), staticSource{}, nil, 0)
	require.Equal(t, DefaultHeartbeatInterval, w.interval)
}
