package main

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/dongyar/internal/service"
)

func newDeleteCmd(remote *remoteOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete SETTLEMENT_ID",
		Short: "Delete a saved settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote.url == "" {
				return errors.New("delete needs --remote")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), remote.timeout)
			defer cancel()

			req := connect.NewRequest(&service.DeleteSettlementRequest{SettlementID: args[0]})
			if _, err := remote.client().DeleteSettlement(ctx, withToken(req, remote.token)); err != nil {
				return describeRemoteError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
