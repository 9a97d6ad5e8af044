package conversation

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiLLMClientRequiresKey(t *testing.T) {
	_, err := NewGeminiLLMClient(context.Background(), "  ", "")
	require.Error(t, err)
}

func TestToGenaiContentMapsRolesAndMedia(t *testing.T) {
	turn := Turn{Role: RoleModel, Parts: []Part{
		TextPart{Text: "Aquí va tu prueba"},
		InlineMediaPart{MIMEType: "image/png", Data: []byte{1, 2}},
	}}

	content := toGenaiContent(turn)

	assert.Equal(t, "model", content.Role)
	require.Len(t, content.Parts, 2)
	assert.Equal(t, genai.Text("Aquí va tu prueba"), content.Parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte{1, 2}}, content.Parts[1])

	assert.Equal(t, "user", toGenaiContent(UserText("hola")).Role)
}

func TestGeminiCompleteRejectsTrailingModelTurn(t *testing.T) {
	client := &GeminiLLMClient{modelID: defaultGeminiModel}
	req := LLMRequest{Turns: []Turn{
		UserText("hola"),
		{Role: RoleModel, Parts: []Part{TextPart{Text: "¡Hola! ¿Qué diseño buscas?"}}},
	}}

	_, err := client.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrTrailingModelTurn)
}

func TestSplitLastTurn(t *testing.T) {
	turns := []Turn{UserText("a"), {Role: RoleModel, Parts: []Part{TextPart{Text: "b"}}}, UserText("c")}

	history, last := splitLastTurn(turns)

	assert.Len(t, history, 2)
	assert.Equal(t, "c", last.Parts[0].(TextPart).Text)
}

func TestGeminiResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"intent":"GREETING",`),
				genai.Text(`"reply":"hola"}`),
			}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5, TotalTokenCount: 15},
	}

	out, err := geminiResponse(resp)
	require.NoError(t, err)

	assert.Equal(t, `{"intent":"GREETING","reply":"hola"}`, out.Text)
	assert.Equal(t, int32(15), out.Usage.TotalTokens)
}

func TestGeminiResponseEmpty(t *testing.T) {
	_, err := geminiResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)

	_, err = geminiResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}})
	require.Error(t, err)
}
