package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/dataagent"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ dataagent.Provider = (*Client)(nil)

// Client implements [dataagent.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.0-flash-lite.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  DefaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Model returns the model ID used when a request does not name one.
func (c *Client) Model() string { return c.model }

// Stream sends a streaming request to the Gemini API and returns a
// [dataagent.Stream] that emits semantic events.
func (c *Client) Stream(ctx context.Context, req dataagent.Request) (dataagent.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	contents := ConvertMessages(req.Messages)
	config := BuildConfig(req)

	iter := c.client.Models.GenerateContentStream(ctx, model, contents, config)
	return NewStreamFromIter(ctx, iter), nil
}

// BuildConfig translates request parameters into a generation config.
// Exported for testing.
func BuildConfig(req dataagent.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
	}

	// The declarations stay in place so earlier function calls in the
	// history still resolve; only new calls are forbidden.
	if req.DisableTools && config.Tools != nil {
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeNone,
			},
		}
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts dataagent Messages to genai Contents.
// Consecutive messages that map to the same role are merged into one
// Content, so the tool results answering one model turn travel together.
// Exported for testing.
func ConvertMessages(msgs []dataagent.Message) []*genai.Content {
	var result []*genai.Content
	add := func(role string, parts []*genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Parts = append(result[n-1].Parts, parts...)
			return
		}
		result = append(result, &genai.Content{Role: role, Parts: parts})
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case dataagent.UserMessage:
			add("user", convertParts(m.Content))
		case dataagent.AssistantMessage:
			add("model", convertParts(m.Content))
		case dataagent.ToolResultMessage:
			key := "output"
			if m.IsError {
				key = "error"
			}
			add("user", []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     m.ToolName,
					Response: map[string]any{key: m.Content},
				},
			}})
		}
	}
	return result
}

func convertParts(blocks []dataagent.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case dataagent.TextBlock:
			if bl.Text == "" {
				continue
			}
			parts = append(parts, &genai.Part{Text: bl.Text})
		case dataagent.ToolCallBlock:
			// Arguments is always valid JSON when built from domain types.
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
			})
		}
	}
	return parts
}

// ConvertTools converts dataagent Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []dataagent.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		// Parameters is a literal schema, always valid JSON.
		var schema map[string]any
		_ = json.Unmarshal(t.Parameters, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
