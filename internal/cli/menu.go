package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/Veraticus/restaurant-ai/internal/engine"
	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/Veraticus/restaurant-ai/internal/validation"
	"github.com/shopspring/decimal"
)

// Processor is what the menu needs from the request orchestrator.
type Processor interface {
	ProcessText(ctx context.Context, input string) model.InferenceResult
	ProcessImage(ctx context.Context, path string) model.InferenceResult
	Validate(result model.InferenceResult, expected *decimal.Decimal) validation.Report
	ModelInfo() engine.ModelInfo
	ReloadConfig() error
	Config() *config.Document
	CheckBackend(ctx context.Context) ([]string, error)
	History() []model.InferenceResult
}

// Menu is the interactive test loop.
type Menu struct {
	processor Processor
	reader    *NonBlockingReader
	writer    io.Writer
	spinner   bool
}

// MenuOption configures a Menu.
type MenuOption func(*Menu)

// WithSpinner enables or disables the progress spinner during requests.
func WithSpinner(enabled bool) MenuOption {
	return func(m *Menu) {
		m.spinner = enabled
	}
}

// NewMenu creates a menu reading choices from in and writing to out.
func NewMenu(processor Processor, in io.Reader, out io.Writer, opts ...MenuOption) *Menu {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	m := &Menu{
		processor: processor,
		reader:    NewNonBlockingReader(in),
		writer:    out,
		spinner:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run checks the backend once and then serves menu choices until the user
// quits, input ends, or ctx is canceled.
func (m *Menu) Run(ctx context.Context) error {
	m.println(FormatTitle("Restaurant AI bookkeeping"))
	m.checkBackend(ctx)

	for {
		m.printMenu()

		choice, err := m.reader.Ask(ctx, m.writer, "Choose an option (0-6)")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled) {
				m.println("")
				return nil
			}
			return fmt.Errorf("failed to read menu choice: %w", err)
		}

		switch choice {
		case "1":
			m.textTest(ctx)
		case "2":
			m.imageTest(ctx)
		case "3":
			m.println(RenderModelInfo(m.processor.ModelInfo()))
		case "4":
			m.reload()
		case "5":
			m.println(RenderConfigSummary(m.processor.Config()))
		case "6":
			m.println(RenderHistory(m.processor.History()))
		case "0":
			m.println(FormatInfo("Goodbye."))
			return nil
		default:
			m.println(FormatWarning("Invalid option, please try again"))
		}
	}
}

func (m *Menu) printMenu() {
	options := []string{
		"1. Text input test",
		"2. Image input test",
		"3. Show model info",
		"4. Reload configuration",
		"5. Show current configuration",
		"6. Show session history",
		"0. Quit",
	}
	m.println("\n" + BoldStyle.Render("Choose a test:") + "\n" + strings.Join(options, "\n"))
}

func (m *Menu) checkBackend(ctx context.Context) {
	check := RunWithSpinner(m.writer, m.spinner, "Checking backend...", func() backendCheck {
		ids, err := m.processor.CheckBackend(ctx)
		return backendCheck{ids: ids, err: err}
	})

	if check.err != nil {
		m.println(FormatError("Cannot reach the inference backend: " + check.err.Error()))
		return
	}
	m.println(FormatSuccess("Inference backend is reachable"))
	if len(check.ids) > 0 {
		m.println(FormatSuccess("Loaded models: " + strings.Join(check.ids, ", ")))
	}
}

type backendCheck struct {
	err error
	ids []string
}

func (m *Menu) textTest(ctx context.Context) {
	input, err := m.reader.Ask(ctx, m.writer, "Transaction text")
	if err != nil {
		return
	}
	if input == "" {
		m.println(FormatWarning("No input given"))
		return
	}

	m.println(FormatInfo("Using model: " + m.processor.ModelInfo().TextModel))
	result := RunWithSpinner(m.writer, m.spinner, "Waiting for the text model...", func() model.InferenceResult {
		return m.processor.ProcessText(ctx, input)
	})
	m.showResult(result)
}

func (m *Menu) imageTest(ctx context.Context) {
	path, err := m.reader.Ask(ctx, m.writer, "Image path")
	if err != nil {
		return
	}
	path = config.ExpandPath(path)
	if _, err := os.Stat(path); err != nil {
		m.println(FormatError("Image file does not exist: " + path))
		return
	}

	m.println(FormatInfo("Using model: " + m.processor.ModelInfo().ImageModel))
	result := RunWithSpinner(m.writer, m.spinner, "Waiting for the image model...", func() model.InferenceResult {
		return m.processor.ProcessImage(ctx, path)
	})
	m.showResult(result)
}

func (m *Menu) showResult(result model.InferenceResult) {
	var report *validation.Report
	if result.OK() {
		r := m.processor.Validate(result, nil)
		report = &r
	}
	m.println(RenderResult(result, report))
}

func (m *Menu) reload() {
	m.println(FormatInfo("Reloading configuration..."))
	if err := m.processor.ReloadConfig(); err != nil {
		m.println(FormatError("Configuration reload failed: " + err.Error()))
		m.println(FormatInfo("Keeping the previous configuration"))
		return
	}
	m.println(FormatSuccess("Configuration reloaded: " + m.processor.ModelInfo().ConfigFile))
	m.println(FormatInfo("Prompts and parameters are updated without a restart"))
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.writer, s)
}
