package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/textops/memo"
	"github.com/jonwraymond/textops/observe"
	"github.com/jonwraymond/textops/server"
)

func newRenderCommand() *cobra.Command {
	var (
		scope    string
		showData bool
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a file through the configured cache",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			backend, err := server.NewBackend(ctx, cfg.Store, observe.NopLogger())
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			m, err := memo.New(backend.Store, server.PlainText,
				memo.WithKeyer(memo.NewDefaultKeyer(cfg.Store.Namespace)),
				memo.WithFailurePolicy(cfg.Store.Policy()),
			)
			if err != nil {
				return err
			}

			res, err := m.GetOrCompute(ctx, scope, string(text))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, res.Output)
			if showData {
				return json.NewEncoder(out).Encode(res.Data)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "render scope")
	cmd.Flags().BoolVar(&showData, "data", false, "print the side-channel data as JSON after the output")
	return cmd
}
