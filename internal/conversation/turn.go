package conversation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one content unit of a turn: TextPart or InlineMediaPart.
type Part interface {
	isPart()
}

// TextPart is plain text.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// InlineMediaPart is a binary attachment (image, video) carried inline.
type InlineMediaPart struct {
	MIMEType string
	Data     []byte
}

func (InlineMediaPart) isPart() {}

// Turn is one message of the caller-supplied history.
type Turn struct {
	Role  string
	Parts []Part
}

// UserText builds a single-part user turn.
func UserText(text string) Turn {
	return Turn{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// Validate enforces the turn invariants: a known role and at least one part.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleModel:
	default:
		return fmt.Errorf("%w: unsupported role %q", ErrInvalidTurn, t.Role)
	}
	if len(t.Parts) == 0 {
		return fmt.Errorf("%w: turn has no parts", ErrInvalidTurn)
	}
	for i, p := range t.Parts {
		if m, ok := p.(InlineMediaPart); ok {
			if strings.TrimSpace(m.MIMEType) == "" {
				return fmt.Errorf("%w: part %d is missing a mime type", ErrInvalidTurn, i)
			}
			if len(m.Data) == 0 {
				return fmt.Errorf("%w: part %d has no data", ErrInvalidTurn, i)
			}
		}
	}
	return nil
}

// Wire format follows the Gemini REST shape; both snake_case and camelCase
// inline data keys are accepted.
type wireMedia struct {
	MIMEType      string `json:"mime_type,omitempty"`
	MIMETypeCamel string `json:"mimeType,omitempty"`
	Data          string `json:"data"`
}

type wirePart struct {
	Text            *string    `json:"text,omitempty"`
	InlineData      *wireMedia `json:"inline_data,omitempty"`
	InlineDataCamel *wireMedia `json:"inlineData,omitempty"`
}

type wireTurn struct {
	Role  string     `json:"role"`
	Parts []wirePart `json:"parts"`
}

// UnmarshalJSON decodes and validates a turn.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var w wireTurn
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	role := strings.ToLower(strings.TrimSpace(w.Role))
	if role == "assistant" {
		role = RoleModel
	}
	parts := make([]Part, 0, len(w.Parts))
	for i, wp := range w.Parts {
		p, err := wp.toPart()
		if err != nil {
			return fmt.Errorf("%w: part %d: %v", ErrInvalidTurn, i, err)
		}
		parts = append(parts, p)
	}
	decoded := Turn{Role: role, Parts: parts}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*t = decoded
	return nil
}

// MarshalJSON encodes a turn in the snake_case wire shape.
func (t Turn) MarshalJSON() ([]byte, error) {
	w := wireTurn{Role: t.Role, Parts: make([]wirePart, 0, len(t.Parts))}
	for _, p := range t.Parts {
		switch v := p.(type) {
		case TextPart:
			text := v.Text
			w.Parts = append(w.Parts, wirePart{Text: &text})
		case InlineMediaPart:
			w.Parts = append(w.Parts, wirePart{InlineData: &wireMedia{
				MIMEType: v.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(v.Data),
			}})
		default:
			return nil, fmt.Errorf("conversation: unsupported part type %T", p)
		}
	}
	return json.Marshal(w)
}

func (wp wirePart) toPart() (Part, error) {
	media := wp.InlineData
	if media == nil {
		media = wp.InlineDataCamel
	}
	switch {
	case media != nil && wp.Text != nil:
		return nil, fmt.Errorf("part carries both text and inline data")
	case wp.Text != nil:
		return TextPart{Text: *wp.Text}, nil
	case media != nil:
		mimeType := media.MIMEType
		if mimeType == "" {
			mimeType = media.MIMETypeCamel
		}
		payload := media.Data
		// Browsers often hand over data URLs; keep only the base64 payload.
		if strings.HasPrefix(payload, "data:") {
			if idx := strings.Index(payload, ","); idx >= 0 {
				payload = payload[idx+1:]
			}
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, fmt.Errorf("inline data is not valid base64: %w", err)
		}
		return InlineMediaPart{MIMEType: strings.TrimSpace(mimeType), Data: raw}, nil
	default:
		return nil, fmt.Errorf("part has neither text nor inline data")
	}
}
