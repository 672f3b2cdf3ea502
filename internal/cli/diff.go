package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/textops/diff"
)

func newDiffCommand() *cobra.Command {
	var (
		granularity string
		semantic    bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Diff two files and print the visual diff markup",
		Long: `Diff two files with the diff settings from --config (granularity,
semantic cleanup and search bounds). --granularity and --semantic override
the file when given.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := readConfig(cmd)
			if err != nil {
				return err
			}
			opts := cfg.Diff.Options()
			if cmd.Flags().Changed("granularity") {
				if opts.Granularity, err = diff.ParseGranularity(granularity); err != nil {
					return usageError{err}
				}
			}
			if cmd.Flags().Changed("semantic") {
				opts.Semantic = semantic
			}

			oldText, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			newText, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			edits := diff.DiffOptions(string(oldText), string(newText), opts)

			out := cmd.OutOrStdout()
			switch format {
			case "html":
				fmt.Fprintln(out, diff.Render(edits, diff.HTMLEscape))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(edits)
			case "stats":
				s := diff.Stats(edits)
				fmt.Fprintf(out, "equal=%d inserted=%d deleted=%d edits=%d\n", s.Equal, s.Inserted, s.Deleted, s.Edits)
			default:
				return usageError{fmt.Errorf("unknown format %q (want html, json or stats)", format)}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&granularity, "granularity", "g", "auto", "auto, runes or lines")
	cmd.Flags().BoolVar(&semantic, "semantic", false, "merge fragmented edits into readable chunks")
	cmd.Flags().StringVarP(&format, "format", "f", "html", "html, json or stats")
	return cmd
}
