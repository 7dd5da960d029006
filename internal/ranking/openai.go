package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	defaultOpenAIModel = "gpt-4o"
	rankToolName       = "return_ranked_jobs"
	// Low temperature for more deterministic ranking.
	rankTemperature = 0.2
)

// OpenAIProvider issues the scoring request as a forced function call so the
// response is constrained to the ranking schema.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) InvokeTool(ctx context.Context, prompts promptSet) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompts.System),
			openai.UserMessage(prompts.User),
		},
		Temperature: openai.Float(rankTemperature),
		Tools:       []openai.ChatCompletionToolParam{rankTool()},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: rankToolName,
				},
			},
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == rankToolName {
			return call.Function.Arguments, nil
		}
	}

	// No function call is a validation problem, not a transport one: the
	// ranker degrades to an empty list instead of retrying.
	return "", nil
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func rankTool() openai.ChatCompletionToolParam {
	var params shared.FunctionParameters
	data, _ := json.Marshal(rankToolSchema())
	_ = json.Unmarshal(data, &params)

	return openai.ChatCompletionToolParam{
		Function: shared.FunctionDefinitionParam{
			Name:        rankToolName,
			Description: openai.String("Returns the job listings ranked by relevance to the candidate's resume and preferences."),
			Parameters:  params,
		},
	}
}

func rankToolSchema() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&rankedJobs{})
}
