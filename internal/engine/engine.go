// Package engine builds inference requests from the configuration, sends them
// to the backend, and turns every outcome into a tagged result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/Veraticus/restaurant-ai/internal/llm"
	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/Veraticus/restaurant-ai/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// imageMIMEType is used for every image data URI.
const imageMIMEType = "image/jpeg"

// discoveryTimeout bounds the backend reachability check.
const discoveryTimeout = 5 * time.Second

// Sampling defaults used when the configuration omits a parameter.
var (
	textDefaults  = sampling{temperature: 0.1, maxTokens: 200}
	imageDefaults = sampling{temperature: 0.1, maxTokens: 300}
)

type sampling struct {
	temperature float64
	maxTokens   int
}

// ClientFactory creates a transport for the given settings.
type ClientFactory func(cfg llm.Config) (llm.Client, error)

// Processor is the request orchestrator. It owns the configuration store and
// reads the active document once per call.
type Processor struct {
	store     *config.Store
	newClient ClientFactory
	newID     func() string
	history   []model.InferenceResult
	strict    bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithClientFactory replaces the HTTP transport, mainly for tests.
func WithClientFactory(factory ClientFactory) Option {
	return func(p *Processor) {
		p.newClient = factory
	}
}

// WithStrictValidation makes amount and status mismatches invalidate reports.
func WithStrictValidation(strict bool) Option {
	return func(p *Processor) {
		p.strict = strict
	}
}

// New creates a processor over store.
func New(store *config.Store, opts ...Option) *Processor {
	p := &Processor{
		store:     store,
		newClient: llm.NewOpenAIClient,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the active configuration document.
func (p *Processor) Config() *config.Document {
	return p.store.Current()
}

// ProcessText asks the text model to extract transactions from input.
func (p *Processor) ProcessText(ctx context.Context, input string) model.InferenceResult {
	doc := p.store.Current()
	requestID := p.newID()

	prompt, err := doc.Prompt(config.PromptText, map[string]string{"user_input": input})
	if err != nil {
		return p.record(failure(requestID, model.ModalityText, fmt.Sprintf("prompt generation failed: %v", err), err))
	}

	params := readSampling(doc, model.ModalityText, textDefaults)
	req := llm.ChatRequest{
		RequestID:   requestID,
		Model:       doc.String("", config.SectionModels, "text"),
		Messages:    []llm.Message{llm.UserText(prompt)},
		Temperature: params.temperature,
		MaxTokens:   params.maxTokens,
		Stop:        doc.Strings(nil, config.SectionParameters, "text", "stop"),
	}

	return p.record(p.call(ctx, doc, req, model.ModalityText))
}

// ProcessImage asks the image model to extract transactions from the picture at path.
func (p *Processor) ProcessImage(ctx context.Context, path string) model.InferenceResult {
	doc := p.store.Current()
	requestID := p.newID()

	image, err := os.ReadFile(path)
	if err != nil {
		readErr := &ImageReadError{Path: path, Err: err}
		return p.record(failure(requestID, model.ModalityImage, readErr.Error(), readErr))
	}

	prompt, err := doc.Prompt(config.PromptImage, nil)
	if err != nil {
		return p.record(failure(requestID, model.ModalityImage, fmt.Sprintf("prompt generation failed: %v", err), err))
	}

	params := readSampling(doc, model.ModalityImage, imageDefaults)
	req := llm.ChatRequest{
		RequestID:   requestID,
		Model:       doc.String("", config.SectionModels, "image"),
		Messages:    []llm.Message{llm.UserImage(prompt, imageMIMEType, image)},
		Temperature: params.temperature,
		MaxTokens:   params.maxTokens,
	}

	return p.record(p.call(ctx, doc, req, model.ModalityImage))
}

// call performs the single blocking request and maps the outcome.
func (p *Processor) call(ctx context.Context, doc *config.Document, req llm.ChatRequest, modality model.Modality) model.InferenceResult {
	logger := slog.With(
		"request_id", req.RequestID,
		"model", req.Model,
		"modality", string(modality))

	client, err := p.newClient(transportConfig(doc))
	if err != nil {
		return failure(req.RequestID, modality, fmt.Sprintf("request failed: %v", err), err)
	}

	logger.Debug("Sending inference request")
	start := time.Now()
	completion, err := client.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Warn("Inference request failed", "duration", elapsed, "error", err)
		return failureFromTransport(req.RequestID, modality, err)
	}

	normalized := llm.Normalize(completion.Content)
	if normalized.Err != nil {
		logger.Info("Model reply could not be normalized", "error", normalized.Err)
	}
	logger.Debug("Inference request completed", "duration", elapsed)

	return model.InferenceResult{
		Success: &model.InferenceSuccess{
			RequestID:  req.RequestID,
			Model:      req.Model,
			Modality:   modality,
			RawOutput:  completion.Content,
			Normalized: normalized,
			Elapsed:    elapsed,
			Usage:      completion.Usage,
		},
	}
}

// Validate checks result against the active settlement rules. expected may be nil.
func (p *Processor) Validate(result model.InferenceResult, expected *decimal.Decimal) validation.Report {
	doc := p.store.Current()
	strict := p.strict || doc.Bool(false, "validation", "strict")
	validator := validation.New(doc, validation.WithStrict(strict))

	out := model.NormalizedOutput{Err: errors.New(result.Error())}
	if result.OK() {
		out = result.Success.Normalized
	}
	return validator.Validate(out, expected)
}

// ModelInfo describes the models and endpoint in use.
type ModelInfo struct {
	TextModel  string `json:"text_model"`
	ImageModel string `json:"image_model"`
	Endpoint   string `json:"api_endpoint"`
	ConfigFile string `json:"config_file"`
}

// ModelInfo returns the models and endpoint from the active configuration.
func (p *Processor) ModelInfo() ModelInfo {
	doc := p.store.Current()
	return ModelInfo{
		TextModel:  doc.String("", config.SectionModels, "text"),
		ImageModel: doc.String("", config.SectionModels, "image"),
		Endpoint:   doc.String("", config.SectionAPI, "endpoint"),
		ConfigFile: p.store.Path(),
	}
}

// ReloadConfig re-reads the configuration file. On failure the current
// configuration stays active.
func (p *Processor) ReloadConfig() error {
	return p.store.Reload()
}

// CheckBackend confirms the backend is reachable and returns the loaded model ids.
func (p *Processor) CheckBackend(ctx context.Context) ([]string, error) {
	cfg := transportConfig(p.store.Current())
	cfg.Timeout = discoveryTimeout

	client, err := p.newClient(cfg)
	if err != nil {
		return nil, err
	}
	return client.ListModels(ctx)
}

// History returns the results produced so far in this process, oldest first.
func (p *Processor) History() []model.InferenceResult {
	out := make([]model.InferenceResult, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Processor) record(result model.InferenceResult) model.InferenceResult {
	p.history = append(p.history, result)
	return result
}

func transportConfig(doc *config.Document) llm.Config {
	seconds := doc.Float(llm.DefaultTimeout.Seconds(), config.SectionAPI, "timeout")
	timeout := time.Duration(seconds * float64(time.Second))
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}

	return llm.Config{
		Endpoint:       doc.String("", config.SectionAPI, "endpoint"),
		ModelsEndpoint: doc.String("", config.SectionAPI, "models_endpoint"),
		Timeout:        timeout,
	}
}

func readSampling(doc *config.Document, modality model.Modality, defaults sampling) sampling {
	section := string(modality)
	return sampling{
		temperature: doc.Float(defaults.temperature, config.SectionParameters, section, "temperature"),
		maxTokens:   doc.Int(defaults.maxTokens, config.SectionParameters, section, "max_tokens"),
	}
}

func failure(requestID string, modality model.Modality, message string, err error) model.InferenceResult {
	return model.InferenceResult{
		Failure: &model.InferenceFailure{
			RequestID: requestID,
			Modality:  modality,
			Message:   message,
			Err:       err,
		},
	}
}

func failureFromTransport(requestID string, modality model.Modality, err error) model.InferenceResult {
	var timeoutErr *llm.TimeoutError
	var statusErr *llm.StatusError

	switch {
	case errors.As(err, &timeoutErr):
		return failure(requestID, modality, timeoutErr.Error(), err)
	case errors.As(err, &statusErr):
		result := failure(requestID, modality, statusErr.Error(), err)
		result.Failure.RawResponse = statusErr.Body
		return result
	default:
		return failure(requestID, modality, fmt.Sprintf("request failed: %v", err), err)
	}
}
