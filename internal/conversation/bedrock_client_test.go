package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverse struct {
	out  *bedrockruntime.ConverseOutput
	err  error
	last *bedrockruntime.ConverseInput
}

func (s *stubConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.last = params
	return s.out, s.err
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(12), OutputTokens: aws.Int32(4), TotalTokens: aws.Int32(16)},
	}
}

func TestNewBedrockLLMClientValidates(t *testing.T) {
	_, err := NewBedrockLLMClient(nil, "model")
	require.Error(t, err)
	_, err = NewBedrockLLMClient(&stubConverse{}, "")
	require.Error(t, err)
}

func TestBedrockCompleteMapsTurns(t *testing.T) {
	api := &stubConverse{out: textOutput(` {"intent":"GREETING","reply":"hola"} `)}
	client, err := NewBedrockLLMClient(api, "anthropic.claude-3-haiku")
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), LLMRequest{
		System: []string{"persona", " "},
		Turns: []Turn{
			UserText("hola"),
			{Role: RoleModel, Parts: []Part{TextPart{Text: "¿en qué te ayudo?"}}},
			{Role: RoleUser, Parts: []Part{
				TextPart{Text: "así"},
				InlineMediaPart{MIMEType: "image/jpeg", Data: []byte{0xff}},
				InlineMediaPart{MIMEType: "video/mp4", Data: []byte{0x00}},
			}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"intent":"GREETING","reply":"hola"}`, resp.Text)
	assert.Equal(t, int32(16), resp.Usage.TotalTokens)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.last.ModelId))
	require.Len(t, api.last.System, 1)
	require.Len(t, api.last.Messages, 3)
	assert.Equal(t, brtypes.ConversationRoleAssistant, api.last.Messages[1].Role)
	assert.Nil(t, api.last.InferenceConfig)

	last := api.last.Messages[2].Content
	require.Len(t, last, 3)
	image, ok := last[1].(*brtypes.ContentBlockMemberImage)
	require.True(t, ok)
	assert.Equal(t, brtypes.ImageFormatJpeg, image.Value.Format)
	_, ok = last[2].(*brtypes.ContentBlockMemberVideo)
	assert.True(t, ok)
}

func TestBedrockCompleteRejectsUnsupportedMedia(t *testing.T) {
	api := &stubConverse{out: textOutput("{}")}
	client, err := NewBedrockLLMClient(api, "m")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), LLMRequest{Turns: []Turn{{
		Role:  RoleUser,
		Parts: []Part{InlineMediaPart{MIMEType: "application/zip", Data: []byte{1}}},
	}}})
	require.Error(t, err)
	assert.Nil(t, api.last, "converse must not be called")
}

func TestBedrockCompletePropagatesErrors(t *testing.T) {
	api := &stubConverse{err: errors.New("throttled")}
	client, err := NewBedrockLLMClient(api, "m")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), LLMRequest{Turns: []Turn{UserText("hola")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestBedrockExtractOutputTextErrors(t *testing.T) {
	_, err := bedrockExtractOutputText(nil)
	require.Error(t, err)

	_, err = bedrockExtractOutputText(&bedrockruntime.ConverseOutput{Output: &brtypes.ConverseOutputMemberMessage{}})
	require.Error(t, err)
}
