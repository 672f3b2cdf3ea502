package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/textops/auth"
	"github.com/jonwraymond/textops/server"
)

func newTokenCommand() *cobra.Command {
	var (
		subject string
		scopes  []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with auth.secret",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if subject == "" {
				return usageError{errors.New("--subject is required")}
			}
			cfg, err := loadConfig(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			a, err := auth.NewJWTAuthenticator(auth.JWTConfig{
				Secret:   []byte(cfg.Auth.Secret),
				Issuer:   cfg.Auth.Issuer,
				Audience: cfg.Auth.Audience,
			})
			if err != nil {
				return err
			}
			token, err := a.Issue(subject, scopes, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{server.ScopeRender, server.ScopeDiff}, "granted scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
