package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quotesync/quotesync/internal/config"
	"github.com/quotesync/quotesync/internal/kv"
	"github.com/quotesync/quotesync/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Long: `Write quotesync.toml holding the effective settings (defaults, environment
and flags merged) so they can be edited. Refuses to overwrite an existing file
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if path == "" {
			path = filepath.Join(cfg.DataDir, config.FileName+".toml")
		}

		if err := config.WriteTOML(path, cfg, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.RenderPass("✓"), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMuted("# from "+used))
		}
		return config.WriteYAML(cmd.OutOrStdout(), cfg)
	},
}

var sessionCmd = &cobra.Command{
	Use:     "session",
	GroupID: "setup",
	Short:   "Manage the terminal session",
	Long: `The last viewed quote is remembered per terminal session so "qs show"
keeps showing it. Sessions are keyed by QUOTES_SESSION or the shell's process id.`,
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Forget the browsing state of this session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session := kv.NewSession("", sessionID(cfg))
		if err := session.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Session %s ended\n", ui.RenderPass("✓"), sessionID(cfg))
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "", "Where to write the file (default <data-dir>/quotesync.toml)")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	rootCmd.AddCommand(configCmd, sessionCmd)
}
