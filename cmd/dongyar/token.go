package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/dongyar/internal/auth"
	"github.com/mmynk/dongyar/internal/config"
)

func newTokenCmd(cfg *config.Config) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a server with AUTH_SECRET set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.AuthEnabled() {
				return errors.New("AUTH_SECRET is not set")
			}

			token, err := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL).Generate(subject)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Who the token is for")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
