package cli

import (
	"encoding/json"
	"io"

	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/Veraticus/restaurant-ai/internal/validation"
)

// ResultView is the machine-readable form of a processed request.
type ResultView struct {
	Data        map[string]any     `json:"data,omitempty"`
	Usage       *model.Usage       `json:"usage,omitempty"`
	Validation  *validation.Report `json:"validation,omitempty"`
	RequestID   string             `json:"request_id"`
	Model       string             `json:"model,omitempty"`
	Modality    string             `json:"modality"`
	RawOutput   string             `json:"raw_output,omitempty"`
	ParseError  string             `json:"parse_error,omitempty"`
	Error       string             `json:"error,omitempty"`
	RawResponse string             `json:"raw_response,omitempty"`
	ElapsedSecs float64            `json:"elapsed_seconds"`
	Success     bool               `json:"success"`
}

// NewResultView flattens result and its optional validation report.
func NewResultView(result model.InferenceResult, report *validation.Report) ResultView {
	view := ResultView{Validation: report}

	if !result.OK() {
		view.RequestID = result.Failure.RequestID
		view.Modality = string(result.Failure.Modality)
		view.Error = result.Error()
		view.RawResponse = result.Failure.RawResponse
		return view
	}

	success := result.Success
	view.Success = true
	view.RequestID = success.RequestID
	view.Model = success.Model
	view.Modality = string(success.Modality)
	view.RawOutput = success.RawOutput
	view.Usage = success.Usage
	view.ElapsedSecs = success.Elapsed.Seconds()
	view.Data = success.Normalized.Data
	if success.Normalized.Err != nil {
		view.ParseError = success.Normalized.Err.Error()
	}
	return view
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
