package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_StripsLeadingLabel(t *testing.T) {
	raw := "應收\n{\"transactions\":[{\"type\":\"income\",\"category\":\"dine-in\",\"amount\":100,\"status\":\"paid\"}]}"

	out := Normalize(raw)
	require.True(t, out.Succeeded())
	require.NoError(t, out.Err)

	records := out.Records()
	require.Len(t, records, 1)
	assert.Equal(t, json.Number("100"), records[0]["amount"])
	assert.Equal(t, "dine-in", records[0]["category"])

	txns, err := out.Transactions()
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "100", txns[0].Amount.String())
}

func TestNormalize_NoJSON(t *testing.T) {
	for _, raw := range []string{
		"",
		"I could not read the receipt.",
		"已收 100",
		"only an opening { brace",
		"} reversed {",
	} {
		t.Run(raw, func(t *testing.T) {
			out := Normalize(raw)
			assert.False(t, out.Succeeded())
			require.ErrorIs(t, out.Err, ErrNoJSON)
			assert.EqualError(t, out.Err, "no JSON found")
			assert.Nil(t, out.Data)
			assert.Empty(t, out.Fragment)
		})
	}
}

func TestNormalize_MalformedJSON(t *testing.T) {
	out := Normalize("{amount: 10}")

	assert.False(t, out.Succeeded())
	var malformed *MalformedJSONError
	require.ErrorAs(t, out.Err, &malformed)
	assert.Equal(t, "{amount: 10}", malformed.Fragment)
	assert.Equal(t, "{amount: 10}", out.Fragment)
	assert.Contains(t, out.Err.Error(), "malformed JSON")
	assert.Nil(t, out.Data)
}

func TestNormalize_GreedySpan(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKeys  []string
		wantError bool
	}{
		{
			name:     "commentary around object",
			raw:      "Here is the result:\n{\"transactions\": []}\nHope this helps!",
			wantKeys: []string{"transactions"},
		},
		{
			name:     "multi line with nested objects",
			raw:      "答案：{\n  \"transactions\": [\n    {\"type\": \"expense\", \"amount\": 35.5}\n  ],\n  \"note\": {\"source\": \"receipt\"}\n}",
			wantKeys: []string{"transactions", "note"},
		},
		{
			name:     "markdown fence",
			raw:      "```json\n{\"transactions\": []}\n```",
			wantKeys: []string{"transactions"},
		},
		{
			name:      "two objects span as one",
			raw:       "{\"a\": 1} and {\"b\": 2}",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.raw)
			if tt.wantError {
				var malformed *MalformedJSONError
				require.ErrorAs(t, out.Err, &malformed)
				return
			}
			require.NoError(t, out.Err)
			for _, key := range tt.wantKeys {
				assert.Contains(t, out.Data, key)
			}
		})
	}
}

func TestStripBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "leading received label",
			raw:  "已收 {\"a\": 1}",
			want: "{\"a\": 1}",
		},
		{
			name: "explanation line",
			raw:  "說明：這是午餐收入\n{\"a\": 1}",
			want: "{\"a\": 1}",
		},
		{
			name: "trailing label",
			raw:  "{\"a\": 1}\n應收",
			want: "{\"a\": 1}",
		},
		{
			name: "english prefixes",
			raw:  "Explanation: lunch sale\nAnswer: {\"a\": 1}",
			want: "{\"a\": 1}",
		},
		{
			name: "label inside a line is kept",
			raw:  "{\"status\": \"應收\"}",
			want: "{\"status\": \"應收\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBoilerplate(tt.raw))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got, ok := ExtractJSON("prefix {\"a\": {\"b\": 1}} suffix")
	require.True(t, ok)
	assert.Equal(t, "{\"a\": {\"b\": 1}}", got)

	_, ok = ExtractJSON("no braces here")
	assert.False(t, ok)
}
