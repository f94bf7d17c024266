package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a reply holds no parseable JSON value.
var ErrNoJSON = errors.New("no JSON found in model reply")

// ExtractJSON pulls the JSON payload out of a free-text model reply.
//
// The payload is the span from the first '[' or '{' that has a matching
// closer later in the text through the last such closer, so surrounding
// prose and code fences are ignored. When no span is found the whole reply is
// tried. Line and block comments outside of strings are removed before
// parsing. It never panics.
func ExtractJSON(reply string) (json.RawMessage, error) {
	candidate := bracketSpan(reply)
	if candidate == "" {
		candidate = reply
	}
	candidate = strings.TrimSpace(stripComments(candidate))
	if candidate == "" {
		return nil, ErrNoJSON
	}

	var probe any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return json.RawMessage(candidate), nil
}

// ExtractJSONList is ExtractJSON for replies expected to hold a list. A single
// object is returned as a one-element list.
func ExtractJSONList(reply string) ([]json.RawMessage, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return []json.RawMessage{raw}, nil
	}
	return nil, fmt.Errorf("%w: not a list or object", ErrNoJSON)
}

func bracketSpan(s string) string {
	lastSquare := strings.LastIndexByte(s, ']')
	lastCurly := strings.LastIndexByte(s, '}')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			if lastSquare > i {
				return s[i : lastSquare+1]
			}
		case '{':
			if lastCurly > i {
				return s[i : lastCurly+1]
			}
		}
	}
	return ""
}

// stripComments removes // and /* */ comments that are not inside JSON strings.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
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

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end - 1
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
