package main

import (
	"github.com/Veraticus/restaurant-ai/internal/cli"
	"github.com/spf13/cobra"
)

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive test menu",
		RunE:  runMenu,
	}
}

func runMenu(cmd *cobra.Command, _ []string) error {
	processor, err := openProcessor()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.OutOrStdout())
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	menu := cli.NewMenu(processor, cmd.InOrStdin(), cmd.OutOrStdout())
	return menu.Run(ctx)
}
