package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/VisionGate/internal/inference"
	"github.com/turtacn/VisionGate/pkg/errors"
)

// ProbeResult is printed by the probe command.
type ProbeResult struct {
	Backend string `json:"backend"`
	Status  string `json:"status"`
}

func (p ProbeResult) String() string {
	return fmt.Sprintf("%s: %s", p.Backend, p.Status)
}

// TableHeaders implements table output.
func (p ProbeResult) TableHeaders() []string { return []string{"BACKEND", "STATUS"} }

// TableRows implements table output.
func (p ProbeResult) TableRows() [][]string { return [][]string{{p.Backend, p.Status}} }

// NewProbeCmd pings the configured backend directly, without a running
// gateway. It fails when the backend is unhealthy.
func NewProbeCmd() *cobra.Command {
	var backendURL string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the inference backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			base := backendURL
			if base == "" {
				base = cliCtx.Config.Backend.BaseURL
			}

			backend, err := inference.NewHTTPBackend(base,
				inference.WithProbeTimeout(cliCtx.Config.Backend.ProbeTimeout),
				inference.WithBackendLogger(cliCtx.Logger),
			)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			status := backend.Probe(ctx)
			if err := PrintResult(cmd, ProbeResult{Backend: base, Status: string(status)}); err != nil {
				return err
			}
			if status != inference.StatusHealthy {
				return errors.New(errors.ErrCodeServiceUnavailable, "backend is unhealthy")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "backend base URL (default: backend.base_url)")
	return cmd
}

//Personal.AI order the ending
