package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewModelsCmd groups the model management commands.
func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and manage the models of a running gateway",
	}
	cmd.AddCommand(newModelsListCmd(), newModelsDescribeCmd(), newModelsSetDefaultCmd())
	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			list, err := cliCtx.Client.ListModels(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, list)
		},
	}
}

func newModelsDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <model-id>",
		Short: "Show the configuration of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			desc, err := cliCtx.Client.DescribeModel(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, desc)
		},
	}
}

func newModelsSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <model-id>",
		Short: "Make a model the gateway default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := gatewayClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			res, err := cliCtx.Client.SetDefaultModel(ctx, args[0])
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, res)
			}
			PrintSuccess(cmd, "default model is now "+res.DefaultModel)
			return nil
		},
	}
}

//Personal.AI order the ending
