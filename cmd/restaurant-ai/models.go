package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/cli"
	"github.com/Veraticus/restaurant-ai/internal/common"
	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Check the model server and list loaded models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			processor, err := openProcessor()
			if err != nil {
				return err
			}

			ids, err := processor.CheckBackend(cmd.Context())
			if err != nil {
				endpoint := processor.ModelInfo().Endpoint
				return common.NewUserError(
					fmt.Sprintf("cannot reach the inference backend at %s", endpoint),
					fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err))
			}

			if asJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), map[string]any{"models": ids})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Inference backend is reachable"))
			if len(ids) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No models are loaded"))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess("Loaded models: "+strings.Join(ids, ", ")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the model ids as JSON")
	return cmd
}
