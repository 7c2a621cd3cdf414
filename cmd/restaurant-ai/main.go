package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/restaurant-ai/internal/cli"
	"github.com/Veraticus/restaurant-ai/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "restaurant-ai",
		Short: "🍳 Restaurant bookkeeping with a local LLM",
		Long: `restaurant-ai sends restaurant transaction descriptions or receipt photos to a
local OpenAI-compatible model server, turns the reply into structured
transactions, and checks them against the settlement rules in config.json.

Run without a subcommand to start the interactive test menu.`,
		PersistentPreRunE: initConfig,
		RunE:              runMenu,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("config", "", "configuration document (default: ./config.json, then $HOME/.config/restaurant-ai/config.json)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().Bool("strict", false, "treat amount and status mismatches as validation failures")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("validation.strict", rootCmd.PersistentFlags().Lookup("strict"))

	// Add commands
	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(textCmd())
	rootCmd.AddCommand(imageCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received termination signal, shutting down...")
		cancel()
	}()

	cmd, err := rootCmd.ExecuteContextC(ctx)
	cancel()

	if err != nil {
		reportError(os.Stderr, cmd, err)
		os.Exit(1)
	}
}

// reportError logs the full error chain and shows the user-facing message once.
func reportError(w io.Writer, cmd *cobra.Command, err error) {
	command := rootCmd.Name()
	if cmd != nil {
		command = cmd.CommandPath()
	}

	common.LogError(err, "Command failed", common.Fields{"command": command})
	fmt.Fprintln(w, cli.FormatError(common.UserMessage(err)))
}

func initConfig(_ *cobra.Command, _ []string) error {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Environment variables, e.g. RESTAURANT_AI_LOGGING_LEVEL
	viper.SetEnvPrefix("RESTAURANT_AI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(level, viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "restaurant-ai %s\n", version)
		},
	}
}
