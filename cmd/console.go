package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"group-messaging/state"
)

const help = `commands:
  /buddy <name>   talk to a buddy
  /open <name>    open a conversation tab
  /close <name>   close a conversation tab
  /buddies        list buddies
  /tabs           list tabs
  /logout         log out
  /login          log in again
  /quit           leave
anything else is sent to the active conversation`

// console translates typed lines into engine operations.
type console struct {
	log      *slog.Logger
	engine   *state.State
	out      io.Writer
	timeout  time.Duration
	username string
}

func newConsole(log *slog.Logger, engine *state.State, out io.Writer, timeout time.Duration) *console {
	return &console{log: log, engine: engine, out: out, timeout: timeout}
}

// start initializes the client, logs in and loads the roster.
func (c *console) start(ctx context.Context, appID, username string) error {
	c.username = username
	if err := c.engine.Init(appID); err != nil {
		return err
	}
	return c.login(ctx)
}

func (c *console) login(ctx context.Context) error {
	loginCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.engine.Login(loginCtx, c.username); err != nil {
		return err
	}
	return c.engine.LoadBuddies(loginCtx)
}

func (c *console) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.engine.Logout(ctx); err != nil {
		c.log.Debug("Logout on exit failed", "error", err)
	}
}

// execute runs one line and reports whether the console should quit.
func (c *console) execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		c.send(ctx, line)
		return false
	}

	command, argument, _ := strings.Cut(line, " ")
	argument = strings.TrimSpace(argument)
	switch command {
	case "/quit":
		return true
	case "/buddy":
		c.engine.ActivateBuddy(argument)
	case "/open":
		c.engine.OpenTab(argument, true)
	case "/close":
		c.engine.CloseTab(argument)
	case "/buddies":
		for _, buddy := range c.engine.Buddies() {
			fmt.Fprintf(c.out, "%s (%s, %s)\n", buddy.Username(), buddy.Kind(), buddy.Presence())
		}
	case "/tabs":
		for _, tab := range c.engine.Tabs() {
			fmt.Fprintf(c.out, "%s active=%t\n", tab.Label, tab.IsActive)
		}
	case "/logout":
		c.stop()
	case "/login":
		if err := c.login(ctx); err != nil {
			fmt.Fprintf(c.out, "login failed: %v\n", err)
		}
	default:
		fmt.Fprintln(c.out, help)
	}
	return false
}

func (c *console) send(ctx context.Context, content string) {
	sendCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	sent, err := c.engine.SendMessage(sendCtx, content)
	switch {
	case err != nil:
		fmt.Fprintf(c.out, "not sent: %v\n", err)
	case !sent:
		fmt.Fprintln(c.out, "no active conversation, use /buddy <name>")
	}
}

// scanLines forwards stdin lines until EOF.
func scanLines(in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}
