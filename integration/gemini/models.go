package gemini

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/response"
)

func (a *Adapter) models(ctx context.Context, backend Backend, _ *http.Request) (handler.Response, error) {
	models, err := backend.ListModels(ctx)
	if err != nil {
		return nil, upstreamError(err)
	}

	out := ModelList{Object: "list", Data: make([]Model, 0, len(models))}
	for _, m := range models {
		if m == nil || m.Name == "" {
			continue
		}
		out.Data = append(out.Data, Model{
			ID:      modelID(m.Name),
			Object:  "model",
			Created: 0,
			OwnedBy: "google",
		})
	}
	return response.JSON(out), nil
}
