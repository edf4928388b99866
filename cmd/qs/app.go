package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotesync/quotesync/internal/config"
	"github.com/quotesync/quotesync/internal/kv"
	"github.com/quotesync/quotesync/internal/logging"
	"github.com/quotesync/quotesync/internal/notify"
	"github.com/quotesync/quotesync/internal/remote"
	"github.com/quotesync/quotesync/internal/service"
	"github.com/quotesync/quotesync/internal/store"
	qsync "github.com/quotesync/quotesync/internal/sync"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logs    *logging.Logger
	db      *kv.SQLite
	session kv.Store
	store   *store.Store
	svc     *service.Service
	notices *notify.Multi
}

type appOptions struct {
	// daemon mode keeps browsing state in memory instead of the CLI session file.
	daemon bool

	// withRemote builds the HTTP adapter so Sync works.
	withRemote bool

	// metrics registers sync collectors.
	metrics prometheus.Registerer

	// stderr receives logs when no log file is configured.
	stderr io.Writer
}

// openApp loads config, opens the stores and builds the service.
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logs, err := logging.New(cfg.Log, opts.stderr)
	if err != nil {
		return nil, err
	}

	db, err := kv.OpenContext(ctx, cfg.DBPath())
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DBPath(), err)
	}

	var session kv.Store
	if opts.daemon {
		session = kv.NewMemory()
	} else {
		session = kv.NewSession("", sessionID(cfg))
	}

	st, err := store.Load(ctx, db, session, logs.For("store"))
	if err != nil {
		db.Close()
		logs.Close()
		return nil, err
	}

	notices := notify.NewMulti(notify.NewLogNotifier(logs.For("notify")))

	svcCfg := &service.Config{
		Store:    st,
		Notifier: notices,
		Logger:   logs.For("service"),
	}
	if opts.withRemote {
		rc := cfg.RemoteAdapterConfig()
		rc.Logger = logs.For("remote")
		adapter, err := remote.New(rc)
		if err != nil {
			db.Close()
			logs.Close()
			return nil, err
		}
		svcCfg.Remote = adapter
	}
	if opts.metrics != nil {
		svcCfg.Metrics = qsync.NewMetrics(opts.metrics)
	}

	svc, err := service.New(svcCfg)
	if err != nil {
		db.Close()
		logs.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logs:    logs,
		db:      db,
		session: session,
		store:   st,
		svc:     svc,
		notices: notices,
	}, nil
}

// Close releases the database and the log file.
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger().Warn("failed to close database", "error", err)
	}
	_ = a.logs.Close()
}

func (a *app) logger() *slog.Logger {
	return a.logs.For("cli")
}

// sessionID identifies the terminal session. Every qs invocation from the same
// shell shares the parent process id.
func sessionID(cfg *config.Config) string {
	if cfg.Session != "" {
		return cfg.Session
	}
	return strconv.Itoa(os.Getppid())
}
