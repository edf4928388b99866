package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/quotesync/quotesync/internal/store"
	qsync "github.com/quotesync/quotesync/internal/sync"
	"github.com/quotesync/quotesync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Run one sync cycle against the server",
	Long: `Fetch the server quotes, merge the ones missing locally, save, then push
the local collection back to the server.

A failing server does not change the local collection. A failing push keeps
the quotes merged in the same cycle.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd.Context(), appOptions{withRemote: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if !jsonOutput {
			a.notices.Add(printNotices(cmd.OutOrStdout()))
		}

		result := a.svc.Sync(cmd.Context())

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(syncSummary(result)); err != nil {
				return err
			}
		} else {
			printCycle(cmd, result)
		}

		if result.Err != nil {
			return fmt.Errorf("sync %s: %w", result.Outcome, result.Err)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show collection and daemon status",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		selected, err := a.svc.SelectedCategory(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s quotesync status\n\n", ui.RenderAccent("◆"))
		fmt.Fprintf(out, "  Database:   %s\n", a.db.Path())
		fmt.Fprintf(out, "  Quotes:     %d\n", len(a.svc.Quotes()))
		fmt.Fprintf(out, "  Categories: %d\n", len(a.svc.Categories()))
		fmt.Fprintf(out, "  Filter:     %s\n", displayFilter(selected))

		if at, ok, err := a.db.UpdatedAt(ctx, store.KeyQuotes); err == nil && ok {
			fmt.Fprintf(out, "  Saved:      %s (%s ago)\n", at.Local().Format(time.DateTime), time.Since(at).Round(time.Second))
		} else {
			fmt.Fprintf(out, "  Saved:      %s\n", ui.RenderMuted("never (seed quotes)"))
		}

		if a.cfg.Dashboard.Enabled {
			addr := net.JoinHostPort(a.cfg.Dashboard.Host, strconv.Itoa(a.cfg.Dashboard.Port))
			if clients, err := probeDaemon(ctx, addr); err == nil {
				fmt.Fprintf(out, "  Daemon:     %s at %s (%d dashboard clients)\n", ui.RenderPass("running"), addr, clients)
			} else {
				fmt.Fprintf(out, "  Daemon:     %s\n", ui.RenderWarn("not reachable at "+addr))
			}
		}
		fmt.Fprintln(out)
		return nil
	},
}

// probeDaemon asks a running daemon's dashboard for its health.
func probeDaemon(ctx context.Context, addr string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var health struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return 0, fmt.Errorf("failed to decode health: %w", err)
	}
	if health.Status != "ok" {
		return 0, fmt.Errorf("daemon status %q", health.Status)
	}
	return health.Clients, nil
}

type cycleSummary struct {
	ID         string  `json:"id"`
	Outcome    string  `json:"outcome"`
	Fetched    int     `json:"fetched"`
	Added      int     `json:"added"`
	Pushed     int     `json:"pushed"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

func syncSummary(r qsync.CycleResult) cycleSummary {
	return cycleSummary{
		ID:         r.ID,
		Outcome:    string(r.Outcome),
		Fetched:    r.Fetched,
		Added:      r.Added,
		Pushed:     r.Pushed,
		DurationMS: float64(r.Duration) / float64(time.Millisecond),
		Error:      r.ErrorMessage(),
	}
}

func printCycle(cmd *cobra.Command, r qsync.CycleResult) {
	out := cmd.OutOrStdout()
	switch r.Outcome {
	case qsync.OutcomeCompleted:
		fmt.Fprintf(out, "%s Sync complete in %v: %d fetched, %d new, %d pushed\n",
			ui.RenderPass("✓"), r.Duration.Round(time.Millisecond), r.Fetched, r.Added, r.Pushed)
	case qsync.OutcomeCoalesced:
		fmt.Fprintf(out, "%s A sync is already running\n", ui.RenderWarn("⚠"))
	case qsync.OutcomePushFailed:
		fmt.Fprintf(out, "%s Merged %d new quotes but the push failed\n", ui.RenderWarn("⚠"), r.Added)
	default:
		fmt.Fprintf(out, "%s Sync %s\n", ui.RenderFail("✗"), r.Outcome)
	}
}

func init() {
	syncCmd.Flags().Bool("json", false, "Output the cycle result as JSON")
	rootCmd.AddCommand(syncCmd, statusCmd)
}
