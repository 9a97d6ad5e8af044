package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockLLMClient implements LLMClient over the Bedrock Converse API.
type BedrockLLMClient struct {
	api     bedrockConverseAPI
	modelID string
}

func NewBedrockLLMClient(api bedrockConverseAPI, modelID string) (*BedrockLLMClient, error) {
	if api == nil {
		return nil, errors.New("conversation: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("conversation: bedrock model id is required")
	}
	return &BedrockLLMClient{api: api, modelID: modelID}, nil
}

func (c *BedrockLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	modelID := c.modelID
	if strings.TrimSpace(req.Model) != "" {
		modelID = req.Model
	}

	systemBlocks := make([]brtypes.SystemContentBlock, 0, len(req.System))
	for _, block := range req.System {
		if strings.TrimSpace(block) == "" {
			continue
		}
		systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: block})
	}

	messages := make([]brtypes.Message, 0, len(req.Turns))
	for i, turn := range req.Turns {
		content, err := bedrockContent(turn.Parts)
		if err != nil {
			return LLMResponse{}, fmt.Errorf("conversation: bedrock turn %d: %w", i, err)
		}
		role := brtypes.ConversationRoleUser
		if turn.Role == RoleModel {
			role = brtypes.ConversationRoleAssistant
		}
		messages = append(messages, brtypes.Message{Role: role, Content: content})
	}
	if len(messages) == 0 {
		return LLMResponse{}, errors.New("conversation: bedrock requires at least one turn")
	}

	inference := &brtypes.InferenceConfiguration{}
	if req.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		inference.Temperature = aws.Float32(req.Temperature)
	}
	if req.TopP != 0 {
		inference.TopP = aws.Float32(req.TopP)
	}
	if inference.MaxTokens == nil && inference.Temperature == nil && inference.TopP == nil {
		inference = nil
	}

	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelID),
		System:          systemBlocks,
		Messages:        messages,
		InferenceConfig: inference,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: bedrock converse failed: %w", err)
	}

	text, err := bedrockExtractOutputText(out)
	if err != nil {
		return LLMResponse{}, err
	}

	resp := LLMResponse{
		Text:       strings.TrimSpace(text),
		StopReason: string(out.StopReason),
	}
	if out.Usage != nil {
		resp.Usage = TokenUsage{
			InputTokens:  int32OrZero(out.Usage.InputTokens),
			OutputTokens: int32OrZero(out.Usage.OutputTokens),
			TotalTokens:  int32OrZero(out.Usage.TotalTokens),
		}
	}
	return resp, nil
}

var bedrockImageFormats = map[string]brtypes.ImageFormat{
	"image/png":  brtypes.ImageFormatPng,
	"image/jpeg": brtypes.ImageFormatJpeg,
	"image/jpg":  brtypes.ImageFormatJpeg,
	"image/gif":  brtypes.ImageFormatGif,
	"image/webp": brtypes.ImageFormatWebp,
}

var bedrockVideoFormats = map[string]brtypes.VideoFormat{
	"video/mp4":       brtypes.VideoFormatMp4,
	"video/webm":      brtypes.VideoFormatWebm,
	"video/quicktime": brtypes.VideoFormatMov,
}

func bedrockContent(parts []Part) ([]brtypes.ContentBlock, error) {
	blocks := make([]brtypes.ContentBlock, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			if strings.TrimSpace(v.Text) == "" {
				continue
			}
			blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: v.Text})
		case InlineMediaPart:
			mimeType := strings.ToLower(strings.TrimSpace(v.MIMEType))
			if format, ok := bedrockImageFormats[mimeType]; ok {
				blocks = append(blocks, &brtypes.ContentBlockMemberImage{Value: brtypes.ImageBlock{
					Format: format,
					Source: &brtypes.ImageSourceMemberBytes{Value: v.Data},
				}})
				continue
			}
			if format, ok := bedrockVideoFormats[mimeType]; ok {
				blocks = append(blocks, &brtypes.ContentBlockMemberVideo{Value: brtypes.VideoBlock{
					Format: format,
					Source: &brtypes.VideoSourceMemberBytes{Value: v.Data},
				}})
				continue
			}
			return nil, fmt.Errorf("unsupported media type %q", v.MIMEType)
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
	}
	if len(blocks) == 0 {
		return nil, errors.New("turn has no usable content")
	}
	return blocks, nil
}

func bedrockExtractOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("conversation: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("conversation: bedrock response did not include a message output")
	}
	if len(msgOut.Value.Content) == 0 {
		return "", errors.New("conversation: bedrock response message was empty")
	}

	var builder strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			builder.WriteString(textBlock.Value)
		}
	}
	outText := builder.String()
	if strings.TrimSpace(outText) == "" {
		return "", errors.New("conversation: bedrock response contained no text content blocks")
	}
	return outText, nil
}

func int32OrZero(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}
