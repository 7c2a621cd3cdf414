package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/restaurant-ai/internal/common"
	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpectedAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantNil bool
		wantErr bool
	}{
		{name: "empty means none", raw: "", wantNil: true},
		{name: "blank means none", raw: "  ", wantNil: true},
		{name: "zero is an expectation", raw: "0", want: "0"},
		{name: "integer", raw: "320", want: "320"},
		{name: "thousands separator", raw: "1,200", want: "1200"},
		{name: "decimal", raw: "99.50", want: "99.5"},
		{name: "not a number", raw: "about 300", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExpectedAmount(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

// fakeBackend answers chat completions with content and lists one model.
func fakeBackend(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/models") {
			_, _ = fmt.Fprint(w, `{"data":[{"id":"google/gemma-3-1b"}]}`)
			return
		}
		reply, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
		_, _ = w.Write(reply)
	}))
	t.Cleanup(server.Close)
	return server
}

func useConfig(t *testing.T, endpoint string) string {
	t.Helper()
	doc := fmt.Sprintf(`{
  "models": {"text": "google/gemma-3-1b", "image": "qwen2.5-vl-3b-instruct"},
  "api": {"endpoint": %q, "timeout": 5},
  "prompts": {"text_system": "Extract: {user_input}", "image_system": "Read the receipt."},
  "parameters": {"text": {"temperature": 0.1, "max_tokens": 200}, "image": {"temperature": 0.1, "max_tokens": 300}},
  "settlement_rules": {"delivery-platform": {"status": "receivable", "delay_days": 7}}
}`, endpoint)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	viper.Set("config", path)
	t.Cleanup(func() {
		viper.Set("config", "")
		viper.Set("validation.strict", false)
	})
	return path
}

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTextCommand(t *testing.T) {
	server := fakeBackend(t, "應收\n{\"transactions\":[{\"type\":\"income\",\"category\":\"delivery-platform\",\"amount\":320,\"status\":\"receivable\"}]}")
	useConfig(t, server.URL+"/v1/chat/completions")

	t.Run("json output", func(t *testing.T) {
		out, err := executeCommand(textCmd(), "--json", "--expect-amount", "320", "foodpanda", "320")
		require.NoError(t, err)

		var view map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, true, view["success"])
		assert.Equal(t, "google/gemma-3-1b", view["model"])
		assert.Equal(t, true, view["validation"].(map[string]any)["valid"])
	})

	t.Run("amount mismatch is advisory", func(t *testing.T) {
		out, err := executeCommand(textCmd(), "--expect-amount", "300", "foodpanda 320")
		require.NoError(t, err)
		assert.Contains(t, out, "amount mismatch: expected 300, got 320")
	})

	t.Run("strict turns mismatches into failures", func(t *testing.T) {
		viper.Set("validation.strict", true)
		defer viper.Set("validation.strict", false)

		_, err := executeCommand(textCmd(), "--expect-amount", "300", "foodpanda 320")
		assert.ErrorIs(t, err, errValidationFailed)
	})

	t.Run("bad amount flag", func(t *testing.T) {
		_, err := executeCommand(textCmd(), "--expect-amount", "lots", "foodpanda")
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})
}

func TestImageCommandMissingFile(t *testing.T) {
	server := fakeBackend(t, "{}")
	useConfig(t, server.URL+"/v1/chat/completions")

	out, err := executeCommand(imageCmd(), "--json", filepath.Join(t.TempDir(), "missing.jpg"))
	require.ErrorIs(t, err, errProcessingFailed)
	assert.Contains(t, out, "image read failed")
}

func TestModelsCommand(t *testing.T) {
	server := fakeBackend(t, "{}")
	useConfig(t, server.URL+"/v1/chat/completions")

	out, err := executeCommand(modelsCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded models: google/gemma-3-1b")

	server.Close()
	_, err = executeCommand(modelsCmd())
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)
}

func TestConfigCommands(t *testing.T) {
	path := useConfig(t, "http://localhost:1234/v1/chat/completions")

	out, err := executeCommand(configCmd(), "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid: "+path)

	out, err = executeCommand(configCmd(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"endpoint": "http://localhost:1234/v1/chat/completions"`)

	out, err = executeCommand(configCmd(), "show", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "delivery-platform: receivable (settles after 7 days)")

	require.NoError(t, os.WriteFile(path, []byte(`{"models": {"text": "a", "image": "b"}}`), 0o600))
	_, err = executeCommand(configCmd(), "check")
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "api")
}

func TestOpenProcessorMissingConfig(t *testing.T) {
	viper.Set("config", filepath.Join(t.TempDir(), "absent.json"))
	defer viper.Set("config", "")

	_, err := openProcessor()
	require.ErrorIs(t, err, common.ErrMissingConfig)
	var notFound *config.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Contains(t, common.UserMessage(err), "does not exist")
}

func TestOpenProcessorInvalidConfigIsNotMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"models": {}}`), 0o600))
	viper.Set("config", path)
	defer viper.Set("config", "")

	_, err := openProcessor()
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrMissingConfig)
	assert.Equal(t, "cannot load configuration "+path, common.UserMessage(err))
}

func TestReportError(t *testing.T) {
	var logs bytes.Buffer
	handler, err := common.NewHandler(&logs, slog.LevelInfo, "json")
	require.NoError(t, err)
	previous := slog.Default()
	slog.SetDefault(slog.New(handler))
	defer slog.SetDefault(previous)

	cause := fmt.Errorf("%w: config file not found: /tmp/x.json", common.ErrMissingConfig)
	var out bytes.Buffer
	reportError(&out, textCmd(), common.NewUserError("configuration file /tmp/x.json does not exist", cause))

	assert.Equal(t, 1, strings.Count(out.String(), "does not exist"), "the message is printed once")
	assert.NotContains(t, out.String(), "missing configuration")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "Command failed", entry["msg"])
	assert.Equal(t, "text", entry["command"])
	assert.Contains(t, entry["error"], "config file not found: /tmp/x.json")
}

func TestRootCommandSilencesErrors(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors, "main reports errors itself")
	assert.True(t, rootCmd.SilenceUsage)
}
