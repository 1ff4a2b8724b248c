package workers

import (
	"context"
	"fmt"
	"log/slog"

	"group-messaging/transport"

	"github.com/samber/lo"
)

// PeerWorker is a simulated buddy. It connects under its own name, joins the
// group and answers every direct message with an echo. Group messages are
// only logged.
type PeerWorker struct {
	log      *slog.Logger
	dialer   transport.Dialer
	appID    string
	username string
	groupID  string
}

func NewPeerWorker(log *slog.Logger, dialer transport.Dialer, appID, username, groupID string) *PeerWorker {
	return &PeerWorker{log: log, dialer: dialer, appID: appID, username: username, groupID: groupID}
}

func (w *PeerWorker) Run(ctx context.Context) error {
	client, err := w.dialer.NewClient(transport.ClientOptions{AppID: w.appID})
	if err != nil {
		return err
	}
	if err := client.Connect(ctx, w.username, transport.PresenceAvailable); err != nil {
		return fmt.Errorf("peer %s: %w", w.username, err)
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			w.log.Warn("Peer disconnect failed", "username", w.username, "error", err)
		}
	}()

	group, err := client.Join(ctx, w.groupID)
	if err != nil {
		return fmt.Errorf("peer %s: %w", w.username, err)
	}

	// Replies are sent from this goroutine so that delivery callbacks stay short.
	inbox := make(chan transport.MessageEvent, 16)
	subscription := client.OnMessage(func(e transport.MessageEvent) {
		select {
		case inbox <- e:
		default:
			w.log.Warn("Peer inbox full, message dropped", "username", w.username, "from", e.EndpointID)
		}
	})
	defer subscription.Cancel()

	w.log.Info("Peer online", "username", w.username, "group_id", w.groupID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-inbox:
			if e.Recipient != "" {
				w.log.Debug("Peer saw group message", "username", w.username, "from", e.EndpointID)
				continue
			}
			if err := w.reply(ctx, group, e); err != nil {
				w.log.Warn("Peer reply failed", "username", w.username, "to", e.EndpointID, "error", err)
			}
		}
	}
}

func (w *PeerWorker) reply(ctx context.Context, group transport.Group, e transport.MessageEvent) error {
	members, err := group.GetMembers(ctx)
	if err != nil {
		return err
	}
	sender, ok := lo.Find(members, func(c transport.Connection) bool {
		return c.EndpointID() == e.EndpointID
	})
	if !ok {
		return fmt.Errorf("sender %s is not a member of %s", e.EndpointID, group.ID())
	}
	return sender.Endpoint().SendMessage(ctx, "echo: "+e.Message)
}
