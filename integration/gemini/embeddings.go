package gemini

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"math"
	"net/http"

	"google.golang.org/genai"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/logger"
	"github.com/dmitrymomot/liverelay/core/response"
)

const (
	encodingFloat  = "float"
	encodingBase64 = "base64"
)

func (a *Adapter) embeddings(ctx context.Context, backend Backend, r *http.Request) (handler.Response, error) {
	var req EmbeddingRequest
	if err := a.bind(r, &req); err != nil {
		return nil, bindError(err)
	}
	if len(req.Input) == 0 {
		return nil, ErrEmptyInput
	}
	switch req.EncodingFormat {
	case "", encodingFloat, encodingBase64:
	default:
		return nil, ErrUnsupportedEncoding
	}

	model := req.Model
	if model == "" {
		model = a.embeddingModel
	}

	contents := make([]*genai.Content, len(req.Input))
	for i, text := range req.Input {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	var config *genai.EmbedContentConfig
	if req.Dimensions != nil {
		config = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(*req.Dimensions))}
	}

	a.logger.DebugContext(ctx, "embeddings", logger.Model(model), logger.Count("inputs", len(req.Input)))

	resp, err := backend.EmbedContent(ctx, modelPath(model), contents, config)
	if err != nil {
		return nil, upstreamError(err)
	}

	out := EmbeddingList{
		Object: "list",
		Data:   make([]Embedding, 0, len(resp.Embeddings)),
		Model:  model,
	}
	for i, e := range resp.Embeddings {
		var values []float32
		if e != nil {
			values = e.Values
		}
		item := Embedding{Object: "embedding", Index: i}
		if req.EncodingFormat == encodingBase64 {
			item.Embedding = encodeFloats(values)
		} else {
			if values == nil {
				values = []float32{}
			}
			item.Embedding = values
		}
		out.Data = append(out.Data, item)
	}
	return response.JSON(out), nil
}

// encodeFloats packs little-endian float32 values as base64, the layout
// OpenAI clients decode for encoding_format=base64.
func encodeFloats(values []float32) string {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
