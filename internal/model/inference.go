package model

import (
	"fmt"
	"time"
)

// Modality is the kind of input submitted for inference.
type Modality string

// Supported modalities.
const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// Usage is the token accounting reported by the backend, if any.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// InferenceResult is the tagged outcome of one inference call.
// Exactly one of Success or Failure is set.
type InferenceResult struct {
	Success *InferenceSuccess
	Failure *InferenceFailure
}

// InferenceSuccess holds a completed call and the normalized reply.
type InferenceSuccess struct {
	Normalized NormalizedOutput
	RequestID  string
	Model      string
	Modality   Modality
	RawOutput  string
	Usage      *Usage
	Elapsed    time.Duration
}

// InferenceFailure holds a call that did not produce a reply.
type InferenceFailure struct {
	Err         error
	RequestID   string
	Modality    Modality
	Message     string
	RawResponse string // raw body for non-200 responses
}

// NormalizedOutput is the result of cleaning a raw model reply.
// Data is set when Err is nil.
type NormalizedOutput struct {
	Data     map[string]any
	Err      error
	Fragment string // offending JSON text when parsing failed
}

// OK reports whether the call succeeded.
func (r InferenceResult) OK() bool {
	return r.Success != nil
}

// Error returns the failure message, or an empty string on success.
func (r InferenceResult) Error() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Message
}

// Succeeded reports whether the reply was parsed into a JSON object.
func (n NormalizedOutput) Succeeded() bool {
	return n.Err == nil && n.Data != nil
}

// Records returns the raw transaction records under the "transactions" key.
// Entries that are not JSON objects are returned as empty records.
func (n NormalizedOutput) Records() []map[string]any {
	list, ok := n.Data["transactions"].([]any)
	if !ok {
		return nil
	}

	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			record = map[string]any{}
		}
		records = append(records, record)
	}
	return records
}

// Transactions returns the typed view of Records.
func (n NormalizedOutput) Transactions() ([]Transaction, error) {
	records := n.Records()
	txns := make([]Transaction, 0, len(records))
	for i, record := range records {
		txn, err := TransactionFromMap(record)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
