package insight

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAI narrates with the OpenAI Responses API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI returns an OpenAI narrator. Extra request options are passed to
// the SDK client.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) *OpenAI {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAI{client: &client, model: model}
}

func (o *OpenAI) Summarize(ctx context.Context, transcript string, phrases []string, scores map[string]float64) (string, error) {
	return o.respond(ctx, summarizePrompt(transcript, phrases, scores))
}

func (o *OpenAI) Explain(ctx context.Context, phrase, excerpt, label string) (string, error) {
	return o.respond(ctx, explainPrompt(phrase, excerpt, label))
}

func (o *OpenAI) respond(ctx context.Context, input string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(maxInsightTokens),
		Instructions:    openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	text, err := cleanOutput(resp.OutputText())
	if err != nil {
		return "", fmt.Errorf("openai responses: %w", err)
	}
	return text, nil
}
