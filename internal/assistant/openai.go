// Package assistant adapts the OpenAI Assistants API (assistants, threads,
// messages and runs) to schema.AssistantService.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
)

// latestMessagesLimit bounds how many recent messages are scanned for the
// newest assistant reply.
const latestMessagesLimit = 20

// OpenAIService talks to the hosted assistant service through openai-go.
// SDK-level retries are disabled: run polling has its own budget, and a
// retried message post would duplicate user input on the thread.
type OpenAIService struct {
	client openai.Client
}

var _ schema.AssistantService = (*OpenAIService)(nil)

// NewOpenAIService builds a client from cfg. httpClient may be nil.
func NewOpenAIService(cfg config.OpenAIConfig, httpClient *http.Client) *OpenAIService {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIService{client: openai.NewClient(opts...)}
}

func (s *OpenAIService) CreateAssistant(ctx context.Context, spec schema.AssistantSpec) (string, error) {
	tools, err := convertTools(spec.Tools)
	if err != nil {
		return "", err
	}

	params := openai.BetaAssistantNewParams{
		Model: shared.ChatModel(spec.Model),
		Tools: tools,
	}
	if spec.Name != "" {
		params.Name = openai.String(spec.Name)
	}
	if spec.Instructions != "" {
		params.Instructions = openai.String(spec.Instructions)
	}

	a, err := s.client.Beta.Assistants.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return a.ID, nil
}

func (s *OpenAIService) CreateThread(ctx context.Context) (string, error) {
	th, err := s.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return th.ID, nil
}

func (s *OpenAIService) PostMessage(ctx context.Context, threadID string, role schema.Role, content string) error {
	_, err := s.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRole(role),
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(content),
		},
	})
	if err != nil {
		return fmt.Errorf("post %s message: %w", role, err)
	}
	return nil
}

func (s *OpenAIService) CreateRun(ctx context.Context, threadID, assistantID string) (schema.Run, error) {
	run, err := s.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: assistantID,
	})
	if err != nil {
		return schema.Run{}, fmt.Errorf("create run: %w", err)
	}
	return toRun(run), nil
}

func (s *OpenAIService) GetRun(ctx context.Context, threadID, runID string) (schema.Run, error) {
	run, err := s.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return schema.Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return toRun(run), nil
}

func (s *OpenAIService) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []schema.ToolOutput) (schema.Run, error) {
	params := openai.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(outputs)),
	}
	for _, o := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(o.ToolCallID),
			Output:     openai.String(o.Output),
		})
	}

	run, err := s.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params)
	if err != nil {
		return schema.Run{}, fmt.Errorf("submit tool outputs for run %s: %w", runID, err)
	}
	return toRun(run), nil
}

func (s *OpenAIService) LatestAssistantText(ctx context.Context, threadID string) (string, bool, error) {
	page, err := s.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
		Limit: openai.Int(latestMessagesLimit),
	})
	if err != nil {
		return "", false, fmt.Errorf("list messages: %w", err)
	}

	for _, m := range page.Data {
		if string(m.Role) != string(schema.RoleAssistant) {
			continue
		}
		text, ok := messageText(m)
		return text, ok, nil
	}
	return "", false, nil
}

// messageText joins the text blocks of m. Image and refusal blocks are skipped.
func messageText(m openai.Message) (string, bool) {
	var parts []string
	for _, c := range m.Content {
		if c.Type == "text" && c.Text.Value != "" {
			parts = append(parts, c.Text.Value)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

func toRun(r *openai.Run) schema.Run {
	run := schema.Run{
		ID:        r.ID,
		ThreadID:  r.ThreadID,
		Status:    schema.RunStatus(r.Status),
		LastError: r.LastError.Message,
	}
	for _, tc := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
		run.ToolCalls = append(run.ToolCalls, schema.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return run
}

func convertTools(defs []schema.Definition) ([]openai.AssistantToolUnionParam, error) {
	tools := make([]openai.AssistantToolUnionParam, 0, len(defs))
	for _, def := range defs {
		var params shared.FunctionParameters
		if len(def.Parameters) > 0 {
			if err := json.Unmarshal(def.Parameters, &params); err != nil {
				return nil, fmt.Errorf("tool %s: invalid parameter schema: %w", def.Name, err)
			}
		}
		if params == nil {
			params = shared.FunctionParameters{"type": "object"}
		}

		fn := shared.FunctionDefinitionParam{
			Name:       def.Name,
			Parameters: params,
		}
		if desc := strings.TrimSpace(def.Description); desc != "" {
			fn.Description = openai.String(desc)
		}
		tools = append(tools, openai.AssistantToolUnionParam{
			OfFunction: &openai.FunctionToolParam{Function: fn},
		})
	}
	return tools, nil
}
