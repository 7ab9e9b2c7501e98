package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/octabyte/caisse-gommon/caisse"
	"github.com/octabyte/caisse-gommon/config"
	"github.com/octabyte/caisse-gommon/gateway"
	"github.com/octabyte/caisse-gommon/otel/metrics"
	"github.com/octabyte/caisse-gommon/queue"
	"github.com/octabyte/caisse-gommon/session"
	"github.com/octabyte/caisse-gommon/storage"
	"github.com/octabyte/caisse-gommon/utils/logger"
)

const serviceName = "caisse-cli"

var flushLogs = logger.Sync

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code once every
// deferred cleanup, log flush included, has run.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	logger.Init(cfg.Logger(serviceName))
	defer flushLogs()
	if err := metrics.Init(serviceName); err != nil {
		logger.LogWarnf("metrics disabled: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := newApp(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer cleanup()

	if err := a.run(ctx, args); err != nil {
		// the navigator has already asked for a new login
		if !errors.Is(err, apierror.ErrAuthorizationExpired) {
			fmt.Fprintln(stderr, "Error:", describe(err))
		}
		return 1
	}
	return 0
}

// newApp wires the gateway, the credential storage selected by cfg and, when
// configured, the session event publisher.
func newApp(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	gw, err := gateway.New(cfg.Gateway())
	if err != nil {
		return nil, cleanup, err
	}

	var creds storage.CredentialStore
	switch cfg.Storage {
	case config.StorageRedis:
		store, client, err := storage.ConnectRedisStore(ctx, cfg.Redis())
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Close() })
		creds = store
	default:
		creds = storage.NewFileStore(cfg.SessionFile)
	}

	opts := []session.Option{session.WithNavigator(reloginNavigator{out: stderr})}
	if queueCfg := cfg.Queue(); queueCfg != nil {
		conn, err := queue.NewConnection(*queueCfg)
		if err != nil {
			logger.LogWarnf("session events disabled: %v", err)
		} else {
			publisher := queue.NewSessionEventsPublisher(conn)
			closers = append(closers, func() {
				_ = publisher.Close()
				_ = conn.Close()
			})
			opts = append(opts, session.WithEvents(publisher))
		}
	}

	store := session.NewStore(gw, creds, opts...)
	if err := store.Init(ctx); err != nil {
		logger.LogWarnf("stored session discarded: %v", err)
	}

	return &app{
		store:   store,
		service: caisse.NewService(gw),
		out:     stdout,
		errOut:  stderr,
	}, cleanup, nil
}
