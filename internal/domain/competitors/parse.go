package competitors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadModelJSON indicates the model's output could not be parsed as the
// requested JSON shape. Distinct so callers can tell a model misfire from an
// infrastructure failure.
var ErrBadModelJSON = errors.New("model returned unparseable JSON")

// Entry is the JSON shape the model is instructed to emit.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Gap   string `json:"gap"`
}

// ParseModelJSON parses the model's text output into competitor entries.
// Models routinely wrap JSON in markdown code fences despite instructions,
// so fences are stripped before parsing. A fenced payload must parse
// identically to a bare one.
func ParseModelJSON(raw string) ([]Entry, error) {
	cleaned := stripFences(raw)

	var entries []Entry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadModelJSON, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrBadModelJSON)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrBadModelJSON, i)
		}
	}
	return entries, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
