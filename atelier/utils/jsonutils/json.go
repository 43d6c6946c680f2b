package jsonutils

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	reFence = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	reObj   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON pulls a JSON object out of LLM output.
//
// Priority:
// 1. Triple-backtick fenced ```json ... ```
// 2. Any {...} object (greedy, first { to last })
//
// It also drops BOMs and zero-width characters the models sometimes emit.
// The content itself is left untouched: escape sequences inside string
// values are meaningful and must survive.
func ExtractJSON(input string) string {
	input = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1
		}
		return r
	}, input))

	if match := reFence.FindStringSubmatch(input); len(match) > 1 {
		input = strings.TrimSpace(match[1])
	} else if match := reObj.FindString(input); match != "" {
		input = strings.TrimSpace(match)
	}

	return input
}

// DecodeStrict unmarshals into v rejecting unknown fields and trailing
// garbage. Any deviation from the expected shape is an error, not a
// best-effort partial decode.
func DecodeStrict(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// A second document after the object means the model kept talking.
	if dec.More() {
		return errors.New("trailing data after JSON object")
	}
	return nil
}
