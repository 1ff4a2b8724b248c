package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"group-messaging/domain/event"
	"group-messaging/errors"
	"group-messaging/internal"
	"group-messaging/projection"
	"group-messaging/repositories"
	"group-messaging/runtime"
	"group-messaging/runtime/workers"
	"group-messaging/sink"
	"group-messaging/state"
	"group-messaging/transport/loopback"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the engine against the in-process transport and drives it from
// the standard input until EOF, /quit or a signal.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Message store
	repository, closeRepository, err := openRepository(config, log)
	if err != nil {
		return exitConfig, err
	}
	defer closeRepository()

	// 3. Engine, bus and listeners
	hub := loopback.NewHub(log)
	bus := runtime.NewBus(log)
	engine := state.New(log, bus, hub, repository, config.GroupID)

	unread := projection.NewUnread(engine)
	bus.ListenAll(unread)
	bus.ListenAll(event.NewDeliveryHandler(log))
	bus.ListenAll(event.NewFailureHandler(log))

	fanout := workers.NewEventFanout(log, bus, config.FanoutBufferSize, config.SinkTimeout).
		Add(sink.NewLogSink(log), sink.NewConsoleSink(os.Stdout, engine, unread))
	defer fanout.Close()

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers: fan-out, heartbeat and simulated peers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(fanout, workers.NewHeartbeatWorker(log, engine, unread, config.HeartbeatInterval))
	for _, peer := range config.PeerNames() {
		sup.Add(workers.NewPeerWorker(log, hub, config.AppID, peer, config.GroupID))
	}
	supervised := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervised)
	}()
	defer func() {
		sup.Stop()
		<-supervised
	}()

	// 6. Session
	console := newConsole(log, engine, os.Stdout, config.TransportTimeout)
	if err := console.start(ctx, config.AppID, config.Username); err != nil {
		return exitRuntime, err
	}
	defer console.stop()

	// 7. Interactive loop
	lines := make(chan string)
	go scanLines(os.Stdin, lines)
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok || console.execute(ctx, line) {
				return exitOK, nil
			}
		}
	}
}

// openRepository returns the configured message store and its release function.
func openRepository(config internal.Config, log *slog.Logger) (repositories.IMessageRepository, func(), error) {
	switch config.MessageStore {
	case internal.MemoryStore:
		return repositories.NewMemoryMessageRepository(), func() {}, nil
	case internal.BadgerStore:
		db, err := repositories.OpenInMemory()
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		repository, err := repositories.NewBadgerMessageRepository(db, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("message sequence failed: %w", err)
		}
		return repository, func() {
			log.Info("Closing BadgerDB...")
			_ = repository.Close()
			_ = db.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", errors.ErrUnknownStore, config.MessageStore)
	}
}
