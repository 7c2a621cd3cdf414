package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/cli"
	"github.com/Veraticus/restaurant-ai/internal/common"
	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/Veraticus/restaurant-ai/internal/engine"
	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/spf13/cobra"
)

var (
	errProcessingFailed = errors.New("processing failed")
	errValidationFailed = errors.New("validation failed")
)

type processFlags struct {
	expectAmount string
	asJSON       bool
}

func (f *processFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.expectAmount, "expect-amount", "", "amount every transaction should carry")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
}

func textCmd() *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "text <description...>",
		Short: "Extract transactions from a text description",
		Example: `  restaurant-ai text "午餐內用收入 1,200 元"
  restaurant-ai text --expect-amount 320 "foodpanda order 320"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.TrimSpace(strings.Join(args, " "))
			if input == "" {
				return common.ErrEmptyInput
			}

			return runProcess(cmd, flags, model.ModalityText, func(p *engine.Processor) model.InferenceResult {
				return p.ProcessText(cmd.Context(), input)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func imageCmd() *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:     "image <path>",
		Short:   "Extract transactions from a receipt photo",
		Example: `  restaurant-ai image ~/receipts/2024-06-01.jpg --expect-amount 850`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])

			return runProcess(cmd, flags, model.ModalityImage, func(p *engine.Processor) model.InferenceResult {
				return p.ProcessImage(cmd.Context(), path)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// runProcess performs one request, validates it, and prints the outcome. The
// command fails when the request fails or the report is invalid.
func runProcess(cmd *cobra.Command, flags processFlags, modality model.Modality, process func(*engine.Processor) model.InferenceResult) error {
	expected, err := parseExpectedAmount(flags.expectAmount)
	if err != nil {
		return err
	}

	processor, err := openProcessor()
	if err != nil {
		return err
	}

	description := fmt.Sprintf("Waiting for the %s model...", modality)
	result := cli.RunWithSpinner(cmd.ErrOrStderr(), !flags.asJSON, description, func() model.InferenceResult {
		return process(processor)
	})
	report := processor.Validate(result, expected)

	if flags.asJSON {
		if err := cli.WriteJSON(cmd.OutOrStdout(), cli.NewResultView(result, &report)); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	} else {
		reportToShow := &report
		if !result.OK() {
			reportToShow = nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderResult(result, reportToShow))
	}

	switch {
	case !result.OK():
		return fmt.Errorf("%w: %s", errProcessingFailed, result.Error())
	case !report.Valid:
		return errValidationFailed
	}
	return nil
}
