package gemini

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/logger"
	"github.com/dmitrymomot/liverelay/core/response"
)

// streamChat starts a streamed completion. The first upstream chunk is read
// before any bytes are written so that early failures still produce a
// proper HTTP status.
func (a *Adapter) streamChat(ctx context.Context, backend Backend, model string, contents []*genai.Content, config *genai.GenerateContentConfig, includeUsage bool) (handler.Response, error) {
	next, stop := iter.Pull2(backend.GenerateContentStream(ctx, modelPath(model), contents, config))

	first, err, ok := next()
	if err != nil {
		stop()
		return nil, upstreamError(err)
	}

	events := make(chan any)
	s := &chatStream{
		id:           "chatcmpl-" + a.newID(),
		created:      a.now().Unix(),
		model:        model,
		includeUsage: includeUsage,
		roleSent:     map[int]bool{},
	}

	go func() {
		defer close(events)
		defer stop()

		send := func(v any) bool {
			select {
			case events <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		resp := first
		for ok {
			for _, chunk := range s.chunks(resp) {
				if !send(chunk) {
					return
				}
			}
			resp, err, ok = next()
			if err != nil {
				a.logger.WarnContext(ctx, "chat stream failed", logger.Model(model), logger.Error(err))
				herr := upstreamError(err)
				send(streamError{Error: errorBody{Message: herr.Error(), Code: response.StatusOf(herr)}})
				return
			}
		}
		if s.includeUsage && s.usage != nil {
			send(ChatCompletionChunk{
				ID:      s.id,
				Object:  objectChatCompletionChunk,
				Created: s.created,
				Model:   s.model,
				Choices: []ChunkChoice{},
				Usage:   s.usage,
			})
		}
	}()

	return response.SSE(events,
		response.WithDoneEvent("[DONE]"),
		response.WithSSEErrorHandler(func(ctx context.Context, err error) {
			a.logger.DebugContext(ctx, "chat stream write failed", logger.Error(err))
		}),
	), nil
}

type chatStream struct {
	id           string
	created      int64
	model        string
	includeUsage bool
	roleSent     map[int]bool
	usage        *Usage
}

// chunks converts one upstream response into OpenAI chunks, one per
// candidate. The assistant role is announced on a candidate's first chunk.
func (s *chatStream) chunks(resp *genai.GenerateContentResponse) []ChatCompletionChunk {
	if resp == nil {
		return nil
	}
	if u := usage(resp.UsageMetadata); u != nil {
		s.usage = u
	}

	out := make([]ChatCompletionChunk, 0, len(resp.Candidates))
	for i, cand := range resp.Candidates {
		idx := candidateIndex(cand, i)
		delta := Delta{Content: candidateText(cand)}
		if !s.roleSent[idx] {
			delta.Role = roleAssistant
			s.roleSent[idx] = true
		}
		var reason *string
		if r := finishReason(cand.FinishReason); r != "" {
			reason = &r
		}
		if delta.Content == "" && delta.Role == "" && reason == nil {
			continue
		}
		out = append(out, ChatCompletionChunk{
			ID:      s.id,
			Object:  objectChatCompletionChunk,
			Created: s.created,
			Model:   s.model,
			Choices: []ChunkChoice{{Index: idx, Delta: delta, FinishReason: reason}},
		})
	}
	return out
}

