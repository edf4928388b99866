// Command qs manages a local quote collection and keeps it in sync with a
// remote server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quotesync/quotesync/internal/config"
	"github.com/quotesync/quotesync/internal/ui"
)

var (
	// v holds flag, env and file settings for the current invocation.
	v = config.NewViper()

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "qs",
	Short: "qs - local quote collection with server sync",
	Long: `qs keeps a collection of short quotes, each tagged with a category.

The collection lives in a local SQLite file and is kept eventually consistent
with a remote server: server quotes missing locally are merged in, then the
local collection is pushed back. Run "qs sync" for a single cycle or
"qs daemon" to sync every 30 seconds.

Configuration is read from quotesync.toml/yaml in the data directory or
~/.config/quotesync, QUOTES_* environment variables and flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "quotes", Title: "Quotes:"},
		&cobra.Group{ID: "sync", Title: "Sync:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: search data dir and ~/.config/quotesync)")
	flags.String("data-dir", config.DefaultDataDir(), "Directory holding quotes.db")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Write logs as JSON")

	bindFlag("data_dir", "data-dir")
	bindFlag("log.level", "log-level")
	bindFlag("log.json", "log-json")
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

// loadConfig resolves the effective configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(v, configFile)
}

func main() {
	ui.ConfigureColors(os.Stdout)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		os.Exit(1)
	}
}
