package main

import (
	"fmt"

	"github.com/Veraticus/restaurant-ai/internal/cli"
	"github.com/Veraticus/restaurant-ai/internal/common"
	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration document",
	}

	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configCheckCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath()
			doc, err := config.LoadAndValidate(path)
			if err != nil {
				return loadError(path, err)
			}

			if summary {
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderConfigSummary(doc))
				return nil
			}

			raw, err := doc.JSON()
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "show models, temperatures, and settlement rules only")
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath()
			if _, err := config.LoadAndValidate(path); err != nil {
				return fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Configuration is valid: "+path))
			return nil
		},
	}
}
