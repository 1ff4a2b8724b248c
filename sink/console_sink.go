package sink

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"group-messaging/domain"
	"group-messaging/domain/event"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// View is the read side of the engine rendered by the console.
type View interface {
	Buddies() []domain.Buddy
	Tabs() []domain.Tab
	ActiveMessages() []domain.Message
}

// UnreadCounter is optional; when set, the tab table shows unread counts.
type UnreadCounter interface {
	Count(key string) int
}

// ConsoleSink renders the buddy list, the tab strip and the active
// conversation whenever they change.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	view   View
	unread UnreadCounter
}

func NewConsoleSink(out io.Writer, view View, unread UnreadCounter) *ConsoleSink {
	return &ConsoleSink{out: out, view: view, unread: unread}
}

func (s *ConsoleSink) Consume(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Type {
	case event.BuddiesUpdated:
		s.renderBuddies()
	case event.TabsUpdated:
		s.renderTabs()
	case event.MessagesUpdated:
		s.renderMessages()
	case event.LoginSuccess, event.LogoutSuccess, event.GroupJoined:
		fmt.Fprintln(s.out, color.New(color.FgGreen).Render("* "+string(e.Type)))
	case event.MessageFailed:
		fmt.Fprintln(s.out, color.New(color.FgRed).Render("! message not delivered"))
	default:
		if payload, ok := e.Payload.(event.Failure); ok {
			fmt.Fprintln(s.out, color.New(color.FgRed).Render(fmt.Sprintf("! %s: %v", e.Type, payload.Err)))
		}
	}
	return nil
}

func (s *ConsoleSink) renderBuddies() {
	table := s.newTable([]string{"Buddy", "Kind", "Presence", "Active"})
	for _, buddy := range s.view.Buddies() {
		table.Append([]string{
			buddy.Username(),
			string(buddy.Kind()),
			string(buddy.Presence()),
			marker(buddy.IsActive()),
		})
	}
	table.Render()
}

func (s *ConsoleSink) renderTabs() {
	tabs := s.view.Tabs()
	if len(tabs) == 0 {
		fmt.Fprintln(s.out, color.New(color.FgGray).Render("(no tab)"))
		return
	}
	table := s.newTable([]string{"Tab", "Active", "Unread"})
	for _, tab := range tabs {
		unread := ""
		if s.unread != nil {
			count := s.unread.Count(tab.Label)
			unread = lo.Ternary(count > 0, strconv.Itoa(count), "")
		}
		table.Append([]string{tab.Label, marker(tab.IsActive), unread})
	}
	table.Render()
}

func (s *ConsoleSink) renderMessages() {
	for _, message := range s.view.ActiveMessages() {
		at := time.UnixMilli(message.Timestamp).Format("15:04:05")
		from := message.From
		if message.IsMyMessage {
			from = color.New(color.FgCyan).Render(from)
		}
		fmt.Fprintf(s.out, "[%s] %s: %s\n", at, from, message.Content)
	}
}

func (s *ConsoleSink) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(s.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func marker(active bool) string {
	return lo.Ternary(active, "*", "")
}
