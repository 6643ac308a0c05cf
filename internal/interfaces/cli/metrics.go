package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewMetricsCmd prints the aggregate request metrics of a running gateway.
func NewMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show request rate and latency of a running gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			m, err := cliCtx.Client.Metrics(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, m)
		},
	}
}

//Personal.AI order the ending
