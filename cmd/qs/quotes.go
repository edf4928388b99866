package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quotesync/quotesync/internal/category"
	"github.com/quotesync/quotesync/internal/notify"
	"github.com/quotesync/quotesync/internal/service"
	"github.com/quotesync/quotesync/internal/ui"
)

var addCmd = &cobra.Command{
	Use:     "add [text] [category]",
	GroupID: "quotes",
	Short:   "Add a quote",
	Long: `Add a quote to the collection.

Text and category may be given as arguments or flags. With neither, and when
stdin is a terminal, an interactive form is shown. Duplicates are allowed.

Examples:
  qs add "Simplicity is prerequisite for reliability." wisdom
  qs add --text "Ship it." --category work
  qs add`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		cat, _ := cmd.Flags().GetString("category")
		if len(args) > 0 {
			text = args[0]
		}
		if len(args) > 1 {
			cat = args[1]
		}

		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if text == "" && cat == "" && ui.IsTerminal(os.Stdin) {
			text, cat, err = ui.AddQuoteForm(a.svc.Categories())
			if errors.Is(err, ui.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMuted("Nothing added."))
				return nil
			}
			if err != nil {
				return err
			}
		}

		q, err := a.svc.AddQuote(cmd.Context(), text, cat)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Added quote to %s\n", ui.RenderPass("✓"), q.DisplayCategory())
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import FILE",
	GroupID: "quotes",
	Short:   "Import quotes from a JSON file",
	Long: `Append every quote of a JSON array file to the collection.

The file must hold an array of {"text": ..., "category": ...} objects. Entries
are imported as they are, without deduplication. Use "-" to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		a.notices.Add(printNotices(cmd.OutOrStdout()))

		var n int
		if args[0] == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			n, err = a.svc.ImportQuotes(cmd.Context(), data)
			if err != nil {
				return err
			}
		} else {
			n, err = a.svc.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %d quotes imported\n", ui.RenderPass("✓"), n)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "quotes",
	Short:   "Export the collection as quotes.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		toStdout, _ := cmd.Flags().GetBool("stdout")

		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if toStdout {
			data, err := a.svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}

		path, err := a.svc.ExportFile(cmd.Context(), dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d quotes to %s\n", ui.RenderPass("✓"), len(a.svc.Quotes()), path)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	GroupID: "quotes",
	Short:   "List categories",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		selected, err := a.svc.SelectedCategory(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderCategories(a.svc.Categories(), selected))
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:     "filter [category]",
	GroupID: "quotes",
	Short:   "Show or set the category used by show",
	Long: `Without arguments, print the selected category. With one, select it.
"all" selects every category. The selection is remembered across runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			selected, err := a.svc.SelectedCategory(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), selected)
			return nil
		}

		selected, err := a.svc.SelectCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Showing quotes from %s\n", ui.RenderPass("✓"), displayFilter(selected))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:     "show",
	GroupID: "quotes",
	Short:   "Show a quote from the selected category",
	Long: `Show the quote last viewed in this terminal session, or a random one
from the selected category when there is none. --next always picks a new one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		next, _ := cmd.Flags().GetBool("next")

		a, err := openApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		show := a.svc.Current
		if next {
			show = a.svc.ShowRandom
		}
		q, err := show(cmd.Context())
		if errors.Is(err, service.ErrNoQuotes) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderWarn("No quotes in this category yet."))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderQuote(q))
		return nil
	},
}

func displayFilter(selected string) string {
	if selected == category.All {
		return "all categories"
	}
	return selected
}

// printNotices writes notices to w for the lifetime of one command.
func printNotices(w io.Writer) notify.Notifier {
	return notify.Func(func(n notify.Notice) {
		if n.Level == notify.LevelError {
			fmt.Fprintf(w, "%s %s\n", ui.RenderFail("!"), n.Message)
			return
		}
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("•"), n.Message)
	})
}

func init() {
	addCmd.Flags().StringP("text", "t", "", "Quote text")
	addCmd.Flags().StringP("category", "c", "", "Quote category")
	exportCmd.Flags().StringP("dir", "d", ".", "Directory to write quotes.json to")
	exportCmd.Flags().Bool("stdout", false, "Write JSON to stdout instead of a file")
	showCmd.Flags().BoolP("next", "n", false, "Pick a new random quote")

	rootCmd.AddCommand(addCmd, importCmd, exportCmd, categoriesCmd, filterCmd, showCmd)
}
