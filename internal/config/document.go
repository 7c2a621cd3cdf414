// Package config loads and serves the restaurant AI configuration document.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/model"
	"gopkg.in/yaml.v3"
)

// Required top-level sections, in the order they are checked.
const (
	SectionModels          = "models"
	SectionAPI             = "api"
	SectionPrompts         = "prompts"
	SectionParameters      = "parameters"
	SectionSettlementRules = "settlement_rules"
)

var requiredSections = []string{
	SectionModels,
	SectionAPI,
	SectionPrompts,
	SectionParameters,
	SectionSettlementRules,
}

var requiredModelKeys = []string{"text", "image"}

// Document is an immutable, parsed configuration document.
type Document struct {
	data map[string]any
	path string
}

// Load reads and parses the document at path. YAML is used for .yaml and .yml
// files, JSON for everything else.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data, err := parse(path, raw)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}

	return &Document{path: path, data: data}, nil
}

// LoadAndValidate loads the document and checks its schema.
func LoadAndValidate(path string) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// NewDocument wraps an already decoded mapping. It does not validate.
func NewDocument(path string, data map[string]any) *Document {
	return &Document{path: path, data: data}
}

func parse(path string, raw []byte) (map[string]any, error) {
	var data map[string]any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
	}

	if data == nil {
		return nil, errors.New("document is empty")
	}
	return data, nil
}

// Validate checks that every required section exists and that models
// defines both a text and an image model.
func (d *Document) Validate() error {
	for _, section := range requiredSections {
		if _, ok := d.data[section]; !ok {
			return &SchemaError{Section: section}
		}
	}

	models, ok := d.data[SectionModels].(map[string]any)
	if !ok {
		return &SchemaError{Section: SectionModels, Keys: requiredModelKeys}
	}

	var missing []string
	for _, key := range requiredModelKeys {
		if _, ok := models[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Section: SectionModels, Keys: missing}
	}

	return nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Get walks keys through nested mappings. It reports false when any segment is absent.
func (d *Document) Get(keys ...string) (any, bool) {
	var value any = d.data
	for _, key := range keys {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// String returns the string at keys, or def.
func (d *Document) String(def string, keys ...string) string {
	v, ok := d.Get(keys...)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Float returns the number at keys, or def.
func (d *Document) Float(def float64, keys ...string) float64 {
	v, ok := d.Get(keys...)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return def
}

// Int returns the integer at keys, or def. Fractional numbers are truncated.
func (d *Document) Int(def int, keys ...string) int {
	v, ok := d.Get(keys...)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

// Bool returns the boolean at keys, or def.
func (d *Document) Bool(def bool, keys ...string) bool {
	v, ok := d.Get(keys...)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Strings returns the string list at keys, or def. A lone string is a
// one-element list. Non-string items are skipped.
func (d *Document) Strings(def []string, keys ...string) []string {
	v, ok := d.Get(keys...)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return []string{s}
	}
	list, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the mapping at keys, or nil.
func (d *Document) Map(keys ...string) map[string]any {
	v, ok := d.Get(keys...)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// SettlementRules returns the category rule table.
func (d *Document) SettlementRules() map[string]model.SettlementRule {
	table := d.Map(SectionSettlementRules)
	if table == nil {
		return nil
	}

	rules := make(map[string]model.SettlementRule, len(table))
	for category := range table {
		rules[category] = model.SettlementRule{
			Status:    d.String("", SectionSettlementRules, category, "status"),
			DelayDays: d.Int(0, SectionSettlementRules, category, "delay_days"),
		}
	}
	return rules
}

// DefaultStatus is the settlement status assumed for categories without a rule.
func (d *Document) DefaultStatus() string {
	return d.String(model.DefaultSettlementStatus, "validation", "default_status")
}

// ExpectedStatus returns the configured settlement status for category.
func (d *Document) ExpectedStatus(category string) string {
	rule, ok := d.SettlementRules()[category]
	if !ok || rule.Status == "" {
		return d.DefaultStatus()
	}
	return rule.Status
}

// JSON renders the document for display.
func (d *Document) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(d.data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return out, nil
}
