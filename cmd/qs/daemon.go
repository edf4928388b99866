package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/quotesync/quotesync/internal/daemon"
	"github.com/quotesync/quotesync/internal/dashboard"
	qsync "github.com/quotesync/quotesync/internal/sync"
	"github.com/quotesync/quotesync/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "sync",
	Short:   "Sync in the background",
	Long: `Run a sync cycle now and then every daemon.interval (default 30s) until
interrupted.

With --inbox, JSON files dropped into the inbox directory are imported and
renamed to <name>.imported (or <name>.rejected when invalid).

With --dashboard, an HTTP server exposes:
  /ws       WebSocket stream of notices and sync results
  /health   health check
  /metrics  prometheus metrics
  /quotes   quotes as JSON (?category=)
  /export   quotes.json download
  /sync     POST to run a cycle now`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().Duration("interval", 0, "Sync interval (default from config, 30s)")
	daemonCmd.Flags().Bool("inbox", false, "Import JSON files dropped into the inbox directory")
	daemonCmd.Flags().String("inbox-dir", "", "Inbox directory (default <data-dir>/inbox)")
	daemonCmd.Flags().Bool("dashboard", false, "Serve the dashboard")
	daemonCmd.Flags().IntP("port", "p", 0, "Dashboard port (default from config, 8080)")

	for key, flag := range map[string]string{
		"daemon.interval":   "interval",
		"daemon.inbox_dir":  "inbox-dir",
		"dashboard.enabled": "dashboard",
		"dashboard.port":    "port",
	} {
		_ = v.BindPFlag(key, daemonCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := openApp(ctx, appOptions{daemon: true, withRemote: true, metrics: reg})
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.logs.For("daemon")
	out := cmd.OutOrStdout()

	dcfg := &daemon.Config{
		Interval:   a.cfg.Daemon.Interval,
		RunOnStart: true,
		Logger:     log,
	}

	// d is assigned below, before the dashboard starts serving.
	var d *daemon.Daemon

	var server *dashboard.Server
	if a.cfg.Dashboard.Enabled {
		server = dashboard.NewServer(&dashboard.Config{
			Host: a.cfg.Dashboard.Host,
			Port: a.cfg.Dashboard.Port,
			Backend: dashboard.TriggerBackend{
				Backend: a.svc,
				Trigger: func(ctx context.Context) qsync.CycleResult { return d.Trigger(ctx) },
			},
			Gatherer: reg,
			Logger:   a.logs.For("dashboard"),
		})

		handler := dashboard.NewHandler(server, a.logs.For("dashboard"))
		a.notices.Add(handler)
		dcfg.OnCycle = handler.OnSyncComplete
	}

	if inboxEnabled, _ := cmd.Flags().GetBool("inbox"); inboxEnabled || cmd.Flags().Changed("inbox-dir") {
		inbox, err := daemon.NewInbox(a.cfg.InboxPath(), a.svc, &daemon.InboxConfig{
			Debounce: a.cfg.Daemon.Debounce,
			Logger:   a.logs.For("inbox"),
		})
		if err != nil {
			return err
		}
		dcfg.Inbox = inbox
		fmt.Fprintf(out, "%s Watching %s for JSON files\n", ui.RenderAccent("◆"), inbox.Dir())
	}

	d, err = daemon.NewWithConfig(a.svc.Syncer(), dcfg)
	if err != nil {
		return err
	}

	if server != nil {
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}
		defer func() {
			if err := server.Stop(); err != nil {
				log.Warn("dashboard shutdown failed", "error", err)
			}
		}()
		fmt.Fprintf(out, "%s Dashboard on http://%s (ws://%s/ws)\n", ui.RenderAccent("◆"), server.GetAddr(), server.GetAddr())
	}

	fmt.Fprintf(out, "%s Syncing every %s, press Ctrl+C to stop\n", ui.RenderAccent("🚀"), a.cfg.Daemon.Interval)
	if err := d.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Daemon stopped")
	return nil
}
