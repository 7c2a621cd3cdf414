package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/common"
	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/Veraticus/restaurant-ai/internal/engine"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// configPath resolves the configuration document from --config or the default locations.
func configPath() string {
	return config.ResolvePath(viper.GetString("config"))
}

// openProcessor loads the configuration document and builds the orchestrator.
// A document that is missing or invalid stops the command.
func openProcessor() (*engine.Processor, error) {
	path := configPath()

	store, err := config.Open(path)
	if err != nil {
		return nil, loadError(path, err)
	}

	return engine.New(store, engine.WithStrictValidation(viper.GetBool("validation.strict"))), nil
}

// loadError turns a configuration load failure into a user error. A missing
// file is reported as common.ErrMissingConfig.
func loadError(path string, err error) error {
	var notFound *config.NotFoundError
	if errors.As(err, &notFound) {
		return common.NewUserError(
			fmt.Sprintf("configuration file %s does not exist (copy config.example.json or pass --config)", path),
			fmt.Errorf("%w: %w", common.ErrMissingConfig, err))
	}
	return common.NewUserError(fmt.Sprintf("cannot load configuration %s", path), err)
}

// parseExpectedAmount parses the --expect-amount value. An empty value means
// no amount is expected; zero is a real expectation.
func parseExpectedAmount(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return nil, nil
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidAmount, raw)
	}
	return &amount, nil
}
