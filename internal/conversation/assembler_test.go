package conversation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

func strPtr(s string) *string { return &s }

func TestAssembleQuestionMode(t *testing.T) {
	p := persona.Default()
	a := NewAssembler(p, logging.Discard(), false)

	req, mode, err := a.Assemble(ChatRequest{Question: strPtr("  ¿Hacen tazas?  ")})
	require.NoError(t, err)

	assert.Equal(t, ModeQuestion, mode)
	assert.Empty(t, req.System)
	assert.True(t, req.JSONOutput)
	require.Len(t, req.Turns, 1)
	assert.Equal(t, RoleUser, req.Turns[0].Role)
	require.Len(t, req.Turns[0].Parts, 1)
	text := req.Turns[0].Parts[0].(TextPart).Text
	assert.Equal(t, p.Instruction()+p.Separator()+"¿Hacen tazas?", text)
}

func TestAssembleHistoryModePreservesTurns(t *testing.T) {
	p := persona.Default()
	a := NewAssembler(p, logging.Discard(), true)
	history := []Turn{
		UserText("Hola"),
		{Role: RoleModel, Parts: []Part{TextPart{Text: `{"intent":"GREETING","reply":"¡Hola!"}`}}},
		{Role: RoleUser, Parts: []Part{
			TextPart{Text: "Quiero este diseño"},
			InlineMediaPart{MIMEType: "image/png", Data: []byte{1, 2, 3}},
		}},
	}

	req, mode, err := a.Assemble(ChatRequest{History: history, Question: strPtr("ignored")})
	require.NoError(t, err)

	assert.Equal(t, ModeHistory, mode)
	assert.Equal(t, []string{p.Instruction()}, req.System)
	assert.Equal(t, history, req.Turns)

	// The payload must not alias the caller's slice.
	req.Turns[0] = UserText("changed")
	assert.Equal(t, "Hola", history[0].Parts[0].(TextPart).Text)
}

func TestAssembleValidation(t *testing.T) {
	a := NewAssembler(persona.Default(), logging.Discard(), false)

	tests := []struct {
		name string
		req  ChatRequest
		want error
	}{
		{"neither field", ChatRequest{}, ErrMissingInput},
		{"blank question", ChatRequest{Question: strPtr("   ")}, ErrEmptyQuestion},
		{"empty history", ChatRequest{History: []Turn{}}, ErrEmptyHistory},
		{"turn without parts", ChatRequest{History: []Turn{{Role: RoleUser}}}, ErrInvalidTurn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := a.Assemble(tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestAssembleTraceLogsShapeOnly(t *testing.T) {
	var buf strings.Builder
	logger := logging.NewWithWriter(&buf, "debug")
	a := NewAssembler(persona.Default(), logger, true)

	_, _, err := a.Assemble(ChatRequest{History: []Turn{UserText("mi dirección es secreta")}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"turns":1`)
	assert.NotContains(t, buf.String(), "secreta")
}
