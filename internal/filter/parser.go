package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var minuteRangePattern = regexp.MustCompile(`^(\d{1,3})?\s*(-)?\s*(\d{1,3})?$`)

// ParseMinuteRange parses a minute range string into inclusive bounds.
//
// Supported formats:
//   - "10-45" - both bounds
//   - "80-" - from minute 80 to the end
//   - "-15" - up to minute 15
//   - "30" - minute 30 only
//
// A nil bound is open.
func ParseMinuteRange(input string) (*int, *int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("minute range cannot be empty")
	}

	matches := minuteRangePattern.FindStringSubmatch(input)
	noDash := matches != nil && matches[2] == ""
	if matches == nil || (matches[1] == "" && matches[3] == "") || (noDash && matches[3] != "") {
		return nil, nil, fmt.Errorf("invalid minute range %q. Use '10-45', '80-', '-15', or '30'", input)
	}

	from, err := parseMinute(matches[1])
	if err != nil {
		return nil, nil, err
	}
	to, err := parseMinute(matches[3])
	if err != nil {
		return nil, nil, err
	}

	// A single number without a dash pins both bounds
	if noDash {
		to = from
	}

	if from != nil && to != nil && *from > *to {
		return nil, nil, fmt.Errorf("start minute must not be after end minute")
	}

	return from, to, nil
}

func parseMinute(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid minute: %s", s)
	}
	return &n, nil
}

// FormatMinuteRange renders bounds in the form ParseMinuteRange accepts.
func FormatMinuteRange(from, to *int) string {
	switch {
	case from != nil && to != nil && *from == *to:
		return strconv.Itoa(*from)
	case from != nil && to != nil:
		return fmt.Sprintf("%d-%d", *from, *to)
	case from != nil:
		return fmt.Sprintf("%d-", *from)
	case to != nil:
		return fmt.Sprintf("-%d", *to)
	}
	return ""
}

// ParseSide normalises a team side argument to "h" or "a".
func ParseSide(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "h", "home":
		return "h", nil
	case "a", "away":
		return "a", nil
	}
	return "", fmt.Errorf("invalid side %q. Use 'h', 'a', 'home', or 'away'", input)
}

// ParseList splits a comma-separated flag value, dropping empty entries.
func ParseList(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
