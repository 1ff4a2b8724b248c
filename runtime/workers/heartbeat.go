package workers

import (
	"context"
	"log/slog"
	"time"

	"group-messaging/domain"

	"github.com/samber/lo"
)

const DefaultHeartbeatInterval = 30 * time.Second

// StatusSource is the read side of the engine reported by the heartbeat.
type StatusSource interface {
	Status() domain.SessionStatus
	Buddies() []domain.Buddy
	Tabs() []domain.Tab
	Conversations() []string
}

// UnreadSource is satisfied by the unread projection.
type UnreadSource interface {
	Snapshot() map[string]int
}

type HeartbeatWorker struct {
	log      *slog.Logger
	source   StatusSource
	unread   UnreadSource
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, source StatusSource, unread UnreadSource, interval time.Duration) *HeartbeatWorker {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &HeartbeatWorker{log: log, source: source, unread: unread, interval: interval}
}

// Run logs a summary of the engine tables on every tick until ctx is done.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat()
		}
	}
}

func (w *HeartbeatWorker) beat() {
	tabs := w.source.Tabs()
	active, _ := lo.Find(tabs, func(t domain.Tab) bool { return t.IsActive })
	unread := 0
	if w.unread != nil {
		unread = lo.Sum(lo.Values(w.unread.Snapshot()))
	}
	w.log.Debug("Engine heartbeat",
		"status", w.source.Status(),
		"buddies", len(w.source.Buddies()),
		"tabs", len(tabs),
		"active_tab", active.Label,
		"conversations", len(w.source.Conversations()),
		"unread", unread,
	)
}
