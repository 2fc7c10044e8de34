package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	thinkBlock        = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fencedJSON        = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharacters = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes the JSON object a chat model answered with. Models
// often wrap it in reasoning tags, markdown fences or prose, or emit slightly
// broken JSON; each candidate below is tried in turn.
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty input")
	}

	withoutThinking := strings.TrimSpace(thinkBlock.ReplaceAllString(input, ""))

	candidates := []string{
		input,
		withoutThinking,
		extractFromMarkdown(withoutThinking),
		extractBalancedBraces(withoutThinking, '{', '}'),
	}
	for _, c := range candidates[:] {
		if c != "" {
			candidates = append(candidates, repairJSON(c))
		}
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown returns the body of the first fenced block that looks like JSON
func extractFromMarkdown(input string) string {
	for _, m := range fencedJSON.FindAllStringSubmatch(input, -1) {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			return body
		}
	}
	return ""
}

// extractBalancedBraces returns the first balanced open..close span,
// ignoring delimiters inside string literals
func extractBalancedBraces(input string, open, close rune) string {
	depth, start := 0, -1
	inString, escape := false, false

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\' && inString:
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// repairJSON fixes trailing commas, unquoted keys, single-quoted strings
// and stray control characters
func repairJSON(input string) string {
	s := trailingComma.ReplaceAllString(input, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlCharacters.ReplaceAllString(s, "")
}

// fixSingleQuotes turns 'value' into "value" outside double-quoted strings.
// Apostrophes inside words are left alone.
func fixSingleQuotes(input string) string {
	var b strings.Builder
	inDouble, inSingle, escape := false, false, false
	var prev rune

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if inSingle || prev == ':' || prev == ',' || prev == '[' || prev == '{' || prev == ' ' || prev == 0 {
				inSingle = !inSingle
				ch = '"'
			}
		case ch == '"' && inSingle:
			b.WriteRune('\\')
		}
		b.WriteRune(ch)
		prev = ch
	}
	return b.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
