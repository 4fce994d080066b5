package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/logger"
	"github.com/dmitrymomot/liverelay/core/response"
)

const (
	objectChatCompletion      = "chat.completion"
	objectChatCompletionChunk = "chat.completion.chunk"

	roleAssistant = "assistant"
	roleModel     = "model"
	roleUser      = "user"
)

func (a *Adapter) chatCompletions(ctx context.Context, backend Backend, r *http.Request) (handler.Response, error) {
	var req ChatCompletionRequest
	if err := a.bind(r, &req); err != nil {
		return nil, bindError(err)
	}

	contents, config, err := convertChat(&req)
	if err != nil {
		return nil, err
	}
	model := req.Model
	if model == "" {
		model = a.chatModel
	}

	a.logger.DebugContext(ctx, "chat completion",
		logger.Model(model),
		logger.Count("messages", len(req.Messages)),
		slog.Bool("stream", req.Stream),
	)

	if req.Stream {
		includeUsage := req.StreamOptions != nil && req.StreamOptions.IncludeUsage
		return a.streamChat(ctx, backend, model, contents, config, includeUsage)
	}

	resp, err := backend.GenerateContent(ctx, modelPath(model), contents, config)
	if err != nil {
		return nil, upstreamError(err)
	}
	return response.JSON(a.completion(model, resp)), nil
}

// convertChat turns OpenAI messages and sampling parameters into Gemini
// contents and a generation config.
func convertChat(req *ChatCompletionRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	if len(req.Messages) == 0 {
		return nil, nil, ErrNoMessages
	}

	config := &genai.GenerateContentConfig{}
	var (
		system   []*genai.Part
		contents []*genai.Content
	)
	for i, msg := range req.Messages {
		parts, err := convertContent(msg.Content)
		if err != nil {
			return nil, nil, response.ErrBadRequest.WithMessage(fmt.Sprintf("messages[%d]: %s", i, err.Error()))
		}
		switch msg.Role {
		case "system", "developer":
			system = append(system, parts...)
		case roleUser, "tool", "function":
			contents = append(contents, &genai.Content{Role: roleUser, Parts: parts})
		case roleAssistant:
			contents = append(contents, &genai.Content{Role: roleModel, Parts: parts})
		default:
			return nil, nil, response.ErrBadRequest.WithMessage(fmt.Sprintf("messages[%d]: unsupported role %q", i, msg.Role))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(contents) == 0 {
		// Gemini requires at least one user turn.
		contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{genai.NewPartFromText("")}})
	}

	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.TopP != nil {
		config.TopP = genai.Ptr(float32(*req.TopP))
	}
	switch {
	case req.MaxCompletionTokens != nil:
		config.MaxOutputTokens = int32(*req.MaxCompletionTokens)
	case req.MaxTokens != nil:
		config.MaxOutputTokens = int32(*req.MaxTokens)
	}
	if len(req.Stop) > 0 {
		config.StopSequences = []string(req.Stop)
	}
	if req.N != nil && *req.N > 1 {
		config.CandidateCount = int32(*req.N)
	}
	if req.Seed != nil {
		config.Seed = genai.Ptr(int32(*req.Seed))
	}
	if req.PresencePenalty != nil {
		config.PresencePenalty = genai.Ptr(float32(*req.PresencePenalty))
	}
	if req.FrequencyPenalty != nil {
		config.FrequencyPenalty = genai.Ptr(float32(*req.FrequencyPenalty))
	}
	if req.ResponseFormat != nil {
		switch req.ResponseFormat.Type {
		case "json_object", "json_schema":
			config.ResponseMIMEType = "application/json"
		case "", "text":
		default:
			return nil, nil, response.ErrBadRequest.WithMessage(fmt.Sprintf("unsupported response_format type %q", req.ResponseFormat.Type))
		}
	}
	return contents, config, nil
}

func convertContent(c MessageContent) ([]*genai.Part, error) {
	if c.Parts == nil {
		return []*genai.Part{genai.NewPartFromText(c.Text)}, nil
	}

	parts := make([]*genai.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		switch p.Type {
		case "text":
			parts = append(parts, genai.NewPartFromText(p.Text))
		case "image_url":
			if p.ImageURL == nil {
				return nil, fmt.Errorf("image_url part without url")
			}
			blob, err := parseDataURL(p.ImageURL.URL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &genai.Part{InlineData: blob})
		default:
			return nil, fmt.Errorf("unsupported content part type %q", p.Type)
		}
	}
	return parts, nil
}

// parseDataURL decodes "data:<mime>;base64,<payload>".
func parseDataURL(raw string) (*genai.Blob, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, ErrUnsupportedImageURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("data URL must be base64 encoded")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 in data URL: %w", err)
	}
	return &genai.Blob{MIMEType: mimeType, Data: data}, nil
}

func (a *Adapter) completion(model string, resp *genai.GenerateContentResponse) ChatCompletion {
	out := ChatCompletion{
		ID:      "chatcmpl-" + a.newID(),
		Object:  objectChatCompletion,
		Created: a.now().Unix(),
		Model:   model,
		Choices: []ChatChoice{},
		Usage:   usage(resp.UsageMetadata),
	}
	for i, cand := range resp.Candidates {
		out.Choices = append(out.Choices, ChatChoice{
			Index:        candidateIndex(cand, i),
			Message:      ResponseMessage{Role: roleAssistant, Content: candidateText(cand)},
			FinishReason: finishReason(cand.FinishReason),
		})
	}
	return out
}

func candidateIndex(cand *genai.Candidate, fallback int) int {
	if cand.Index != 0 {
		return int(cand.Index)
	}
	return fallback
}

func candidateText(cand *genai.Candidate) string {
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// finishReason maps Gemini finish reasons onto the OpenAI vocabulary.
func finishReason(reason genai.FinishReason) string {
	switch string(reason) {
	case "", "FINISH_REASON_UNSPECIFIED":
		return ""
	case "STOP":
		return "stop"
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		return "content_filter"
	}
	return strings.ToLower(string(reason))
}

func usage(meta *genai.GenerateContentResponseUsageMetadata) *Usage {
	if meta == nil {
		return nil
	}
	prompt := int(meta.PromptTokenCount)
	completion := int(meta.CandidatesTokenCount)
	total := int(meta.TotalTokenCount)
	if total == 0 {
		total = prompt + completion
	}
	return &Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: total}
}
