package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotJSONObject = errors.New("AI response is not a JSON object")

// ExtractJSONObject pulls the JSON object out of a model response. Markdown
// fences and chatter around the object are tolerated; anything else is not.
func ExtractJSONObject(content string) (map[string]any, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		return nil, ErrNotJSONObject
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, ErrNotJSONObject
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	return obj, nil
}
