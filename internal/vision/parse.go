package vision

import (
	"strings"
)

// ParseLine parses one "title | description | price" line. Lines without a
// pipe, preamble lines and lines without a title yield nil.
func ParseLine(line string) *Suggestion {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}

	// Skip common headers or non-item lines
	for _, prefix := range []string{"Here", "I see", "Based on", "Aqui", "Sugestão:"} {
		if strings.HasPrefix(line, prefix) {
			return nil
		}
	}

	parts := strings.Split(line, "|")
	s := &Suggestion{Title: strings.TrimSpace(parts[0])}
	if len(parts) >= 2 {
		s.Description = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		s.Price = normalisePrice(parts[2])
	}
	if s.Title == "" {
		return nil
	}
	return s
}

// ParseSuggestion returns the first suggestion line found in raw.
func ParseSuggestion(raw string) (*Suggestion, error) {
	for _, line := range strings.Split(raw, "\n") {
		if s := ParseLine(line); s != nil {
			s.RawResponse = raw
			return s, nil
		}
	}
	return nil, ErrNoSuggestion
}

func normalisePrice(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "R$")
	return strings.TrimSpace(p)
}
