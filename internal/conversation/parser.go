package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	codeFence     = "```"
	jsonFenceOpen = "```json"
)

// StructuredReply is the {intent, reply} contract the model must emit.
type StructuredReply struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
}

// ReplyDefaults are substituted for fields the model leaves out.
type ReplyDefaults struct {
	Intent string
	Reply  string
}

// StripCodeFence removes a markdown fence wrapper. Applying it twice yields
// the same result as applying it once.
func StripCodeFence(text string) string {
	for {
		next := stripFenceOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func stripFenceOnce(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case hasPrefixFold(text, jsonFenceOpen):
		text = text[len(jsonFenceOpen):]
	case strings.HasPrefix(text, codeFence):
		text = text[len(codeFence):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), codeFence)
	return strings.TrimSpace(text)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ParseStructuredReply turns raw backend text into a StructuredReply.
// Anything that is not a single JSON object fails with ErrMalformedModelOutput.
func ParseStructuredReply(raw string, defaults ReplyDefaults) (StructuredReply, error) {
	body := StripCodeFence(raw)
	if !strings.HasPrefix(body, "{") {
		return StructuredReply{}, fmt.Errorf("%w: not a JSON object", ErrMalformedModelOutput)
	}

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&fields); err != nil {
		return StructuredReply{}, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return StructuredReply{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedModelOutput)
	}

	out := StructuredReply{
		Intent: stringField(fields, "intent"),
		Reply:  stringField(fields, "reply"),
	}
	if strings.TrimSpace(out.Intent) == "" {
		out.Intent = defaults.Intent
	}
	if strings.TrimSpace(out.Reply) == "" {
		out.Reply = defaults.Reply
	}
	return out, nil
}

// stringField reads a string member, tolerating null and non-string values.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(v)
}
