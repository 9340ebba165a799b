package main

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/dongyar/internal/service"
)

func newGetCmd(remote *remoteOptions) *cobra.Command {
	var (
		locale string
		chart  bool
	)

	cmd := &cobra.Command{
		Use:   "get SETTLEMENT_ID",
		Short: "Show a saved settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote.url == "" {
				return errors.New("get needs --remote")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), remote.timeout)
			defer cancel()

			req := connect.NewRequest(&service.GetSettlementRequest{SettlementID: args[0], Locale: locale})
			resp, err := remote.client().GetSettlement(ctx, withToken(req, remote.token))
			if err != nil {
				return describeRemoteError(err)
			}

			return printView(cmd.OutOrStdout(), resp.Msg.Settlement, chart)
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Locale for the rendered sentences (defaults to the saved one)")
	cmd.Flags().BoolVar(&chart, "chart", false, "Also print each person's share of the total")

	return cmd
}
