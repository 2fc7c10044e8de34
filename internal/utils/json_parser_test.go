package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intentPayload struct {
	ServiceType  string `json:"service_type"`
	FromLocation string `json:"from_location"`
	Passengers   int    `json:"passengers"`
}

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    intentPayload
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"service_type": "jets", "from_location": "Geneva", "passengers": 4}`,
			want:  intentPayload{"jets", "Geneva", 4},
		},
		{
			name:  "JSON in markdown code block",
			input: "```json\n{\"service_type\": \"yachts\", \"passengers\": 8}\n```",
			want:  intentPayload{ServiceType: "yachts", Passengers: 8},
		},
		{
			name:  "Reasoning block before the answer",
			input: "<think>The user wants {a jet}.</think>\n{\"service_type\": \"jets\"}",
			want:  intentPayload{ServiceType: "jets"},
		},
		{
			name:  "JSON with surrounding text",
			input: `Here is the result: {"from_location": "Zurich"} hope it helps`,
			want:  intentPayload{FromLocation: "Zurich"},
		},
		{
			name:  "JSON with trailing comma",
			input: `{"service_type": "cars", "passengers": 2,}`,
			want:  intentPayload{ServiceType: "cars", Passengers: 2},
		},
		{
			name:  "JSON with unquoted keys",
			input: `{service_type: "helicopters", passengers: 3}`,
			want:  intentPayload{ServiceType: "helicopters", Passengers: 3},
		},
		{
			name:  "Single quoted values",
			input: `{'service_type': 'transfers', 'from_location': 'Nice'}`,
			want:  intentPayload{ServiceType: "transfers", FromLocation: "Nice"},
		},
		{
			name:    "Empty string",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "not json at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got intentPayload
			err := ParseAIJSON(tt.input, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"JSON code block with json tag", "```json\n{\"test\": true}\n```", `{"test": true}`},
		{"JSON code block without tag", "```\n{\"test\": true}\n```", `{"test": true}`},
		{"Prose block skipped", "```\nhello\n```", ""},
		{"No code block", `{"test": true}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFromMarkdown(tt.input))
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Simple object", `{"a": 1}`, `{"a": 1}`},
		{"Nested objects", `x {"a": {"b": 2}} y`, `{"a": {"b": 2}}`},
		{"Braces inside strings", `{"text": "Hello {world}"}`, `{"text": "Hello {world}"}`},
		{"Escaped quote inside string", `{"text": "say \"}\""}`, `{"text": "say \"}\""}`},
		{"Unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBalancedBraces(tt.input, '{', '}'))
		})
	}
}
