package scraper

import (
	"encoding/json"
	"fmt"
	"strings"
)

// seedKey names the entry that carries the bulk of the match data.
const seedKey = "matchCentreData"

// entry is one top-level `key: value` pair of the embedded object literal.
type entry struct {
	key   string
	value json.RawMessage
}

var stripControl = strings.NewReplacer("\n", "", "\t", "")

// scanner tracks quoting and nesting while walking a script.
type scanner struct {
	quote   byte // active quote character, 0 outside strings
	escaped bool
	opens   []int // positions of unclosed '{' and '['
}

// step advances over src[i]. It returns the start of a bracket pair closed at i, or -1.
func (s *scanner) step(src string, i int) int {
	c := src[i]
	if s.quote != 0 {
		switch {
		case s.escaped:
			s.escaped = false
		case c == '\\':
			s.escaped = true
		case c == s.quote:
			s.quote = 0
		}
		return -1
	}

	switch c {
	case '"', '\'':
		s.quote = c
	case '{', '[':
		s.opens = append(s.opens, i)
	case '}', ']':
		if len(s.opens) > 0 {
			open := s.opens[len(s.opens)-1]
			s.opens = s.opens[:len(s.opens)-1]
			return open
		}
	}
	return -1
}

// innermostBrace returns the position of the innermost unclosed '{', or -1.
func (s *scanner) innermostBrace(src string) int {
	if len(s.opens) == 0 {
		return -1
	}
	open := s.opens[len(s.opens)-1]
	if src[open] != '{' {
		return -1
	}
	return open
}

// extractLiteral returns the object literal that encloses the first matchId key.
func extractLiteral(script string) (string, error) {
	src := stripControl.Replace(script)

	var sc scanner
	start := -1
	for i := 0; i < len(src); i++ {
		// A bare key sits outside any string; a quoted key opens a string right before it.
		bare := sc.quote == 0 && strings.HasPrefix(src[i:], "matchId")
		quoted := sc.quote != 0 && i > 0 && src[i-1] == sc.quote && strings.HasPrefix(src[i:], "matchId"+string(sc.quote))
		if bare || quoted {
			start = sc.innermostBrace(src)
			if start >= 0 {
				break
			}
		}
		sc.step(src, i)
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no object literal containing matchId", ErrNoMatchData)
	}

	sc = scanner{}
	for i := start; i < len(src); i++ {
		if open := sc.step(src, i); open == start {
			return src[start : i+1], nil
		}
	}
	return "", fmt.Errorf("%w: object literal starting at offset %d is not closed", ErrMalformedData, start)
}

// splitEntries breaks an object literal into its top-level entries. Keys may be
// bare identifiers or quoted; a trailing comma is tolerated. Every value must be JSON.
func splitEntries(literal string) ([]entry, error) {
	literal = strings.TrimSpace(literal)
	if len(literal) < 2 || literal[0] != '{' || literal[len(literal)-1] != '}' {
		return nil, fmt.Errorf("%w: not an object literal", ErrMalformedData)
	}
	body := literal[1 : len(literal)-1]

	var (
		entries []entry
		sc      scanner
		from    int
	)
	flush := func(to int) error {
		segment := strings.TrimSpace(body[from:to])
		from = to + 1
		if segment == "" {
			return nil
		}
		e, err := parseEntry(segment)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	}

	for i := 0; i < len(body); i++ {
		if body[i] == ',' && sc.quote == 0 && len(sc.opens) == 0 {
			if err := flush(i); err != nil {
				return nil, err
			}
			continue
		}
		sc.step(body, i)
	}
	if sc.quote != 0 || len(sc.opens) != 0 {
		return nil, fmt.Errorf("%w: unbalanced object literal", ErrMalformedData)
	}
	if err := flush(len(body)); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseEntry(segment string) (entry, error) {
	var key, rest string

	switch q := segment[0]; q {
	case '"', '\'':
		end := closingQuote(segment, q)
		if end < 0 {
			return entry{}, fmt.Errorf("%w: unterminated key in %.40q", ErrMalformedData, segment)
		}
		key = segment[1:end]
		if q == '"' {
			if err := json.Unmarshal([]byte(segment[:end+1]), &key); err != nil {
				return entry{}, fmt.Errorf("%w: key %s: %v", ErrMalformedData, segment[:end+1], err)
			}
		}
		rest = strings.TrimSpace(segment[end+1:])
		if !strings.HasPrefix(rest, ":") {
			return entry{}, fmt.Errorf("%w: key %q has no value", ErrMalformedData, key)
		}
		rest = rest[1:]
	default:
		colon := strings.IndexByte(segment, ':')
		if colon < 0 {
			return entry{}, fmt.Errorf("%w: entry %.40q has no key", ErrMalformedData, segment)
		}
		key = strings.TrimSpace(segment[:colon])
		rest = segment[colon+1:]
	}

	value := strings.TrimSpace(rest)
	if key == "" {
		return entry{}, fmt.Errorf("%w: empty key", ErrMalformedData)
	}
	if !json.Valid([]byte(value)) {
		return entry{}, fmt.Errorf("%w: value of %q is not valid JSON", ErrMalformedData, key)
	}
	return entry{key: key, value: json.RawMessage(value)}, nil
}

func closingQuote(s string, q byte) int {
	escaped := false
	for i := 1; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == q:
			return i
		}
	}
	return -1
}

// mergeEntries seeds the record from matchCentreData (or, failing that, the
// second entry) and lays every other entry over it by key.
func mergeEntries(entries []entry) ([]byte, error) {
	seed := -1
	for i, e := range entries {
		if e.key == seedKey {
			seed = i
			break
		}
	}
	if seed < 0 && len(entries) > 1 && strings.HasPrefix(string(entries[1].value), "{") {
		seed = 1
	}
	if seed < 0 {
		return nil, fmt.Errorf("%w: no %s entry", ErrNoMatchData, seedKey)
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(entries[seed].value, &merged); err != nil || merged == nil {
		return nil, fmt.Errorf("%w: %s is not an object", ErrNoMatchData, entries[seed].key)
	}

	for i, e := range entries {
		if i == seed {
			continue
		}
		merged[e.key] = e.value
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding merged record: %w", err)
	}
	return data, nil
}
