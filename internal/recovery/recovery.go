// recovery.go - Defensive extraction of one JSON object from free-form model output
//
// Models are prompted to return a single JSON object but routinely wrap it in
// prose, fence it in markdown, or emit JSON with small formatting defects.
// ExtractObject runs an ordered chain of strategies and returns the first
// object any of them can parse.

package recovery

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoStructuredData is returned when no strategy could recover a JSON object.
var ErrNoStructuredData = errors.New("no structured data")

// strategy attempts to pull one JSON object out of raw model text.
type strategy func(string) (map[string]interface{}, bool)

var strategies = []strategy{
	balancedBraces,
	fencedBlock,
	lineScan,
	repairAndParse,
}

// ExtractObject tries each recovery strategy in order and returns the first
// successfully parsed object. Strategies later in the chain are more lenient.
func ExtractObject(text string) (map[string]interface{}, error) {
	for _, s := range strategies {
		if obj, ok := s(text); ok {
			return obj, nil
		}
	}
	return nil, ErrNoStructuredData
}

// parseObject unmarshals a candidate substring, rejecting non-object payloads.
func parseObject(candidate string) (map[string]interface{}, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || candidate[0] != '{' {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// balancedBraces scans for the first balanced brace-delimited substring,
// tracking string literals so braces inside values don't confuse the count.
func balancedBraces(text string) (map[string]interface{}, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return parseObject(text[start : i+1])
			}
		}
	}
	return nil, false
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// fencedBlock looks for a markdown code fence and parses its contents.
func fencedBlock(text string) (map[string]interface{}, bool) {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return parseObject(m[1])
}

// lineScan accumulates lines from the first opening brace until the brace
// depth returns to zero. Cruder than balancedBraces (no string awareness) but
// survives responses where braces are split by commentary mid-line.
func lineScan(text string) (map[string]interface{}, bool) {
	var block strings.Builder
	depth := 0
	collecting := false

	for _, line := range strings.Split(text, "\n") {
		if !collecting {
			if !strings.Contains(line, "{") {
				continue
			}
			collecting = true
			line = line[strings.IndexByte(line, '{'):]
		}

		block.WriteString(line)
		block.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 {
			return parseObject(block.String())
		}
	}
	return nil, false
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	bareValueRe     = regexp.MustCompile(`:\s*([A-Za-z][A-Za-z0-9 _./-]*[A-Za-z0-9])\s*([,}\]])`)
)

// repairAndParse heuristically fixes common model formatting defects: stray
// fences, trailing commas, unquoted keys and unquoted scalar values.
func repairAndParse(text string) (map[string]interface{}, bool) {
	repaired := strings.ReplaceAll(text, "```json", "")
	repaired = strings.ReplaceAll(repaired, "```", "")
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	repaired = bareKeyRe.ReplaceAllString(repaired, `$1"$2":`)
	repaired = bareValueRe.ReplaceAllStringFunc(repaired, quoteBareValue)

	return balancedBraces(repaired)
}

// quoteBareValue wraps an unquoted scalar value in quotes, leaving JSON
// literals (true/false/null) alone.
func quoteBareValue(match string) string {
	m := bareValueRe.FindStringSubmatch(match)
	value := m[1]
	switch value {
	case "true", "false", "null":
		return match
	}
	return `: "` + value + `"` + m[2]
}
