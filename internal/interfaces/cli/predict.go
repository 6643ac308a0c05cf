package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/VisionGate/pkg/client"
)

// predictionOutput adapts client.PredictResult to text and table output.
type predictionOutput struct {
	*client.PredictResult
}

func (p predictionOutput) TableHeaders() []string {
	return []string{"LABEL", "CONFIDENCE", "BBOX"}
}

func (p predictionOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Predictions))
	for _, pr := range p.Predictions {
		rows = append(rows, []string{
			pr.Label,
			strconv.FormatFloat(pr.Confidence, 'f', 3, 64),
			fmt.Sprintf("%d,%d,%d,%d", pr.BBox[0], pr.BBox[1], pr.BBox[2], pr.BBox[3]),
		})
	}
	return rows
}

func (p predictionOutput) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "model: %s\n", p.ModelUsed)
	sb.WriteString(FormatTable(p.TableHeaders(), p.TableRows()))
	return strings.TrimRight(sb.String(), "\n")
}

// NewPredictCmd uploads an image file to a running gateway.
func NewPredictCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "predict <image-file>",
		Short: "Run a prediction through a running gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := gatewayClient(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer f.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			res, err := cliCtx.Client.Predict(ctx, model, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == "json" {
				return PrintResult(cmd, res)
			}
			return PrintResult(cmd, predictionOutput{res})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model id (default: the gateway default)")
	return cmd
}

//Personal.AI order the ending
