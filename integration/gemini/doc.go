// Package gemini implements an OpenAI-compatible REST surface on top of the
// Gemini API.
//
// The Adapter answers three endpoints, matched by path suffix so any prefix
// works:
//
//	POST .../chat/completions   chat completions, streamed as SSE when "stream" is set
//	POST .../embeddings         text embeddings as float arrays or base64
//	GET  .../models             the models available to the caller's key
//
// The caller's key comes from "Authorization: Bearer <key>" or the
// "x-goog-api-key" header and is used for that request only. Upstream calls
// go through a Backend created per request by a BackendFactory; GenAIFactory
// wraps google.golang.org/genai.
//
// Usage:
//
//	adapter := gemini.New(
//		gemini.WithBackendFactory(gemini.GenAIFactory("", nil)),
//		gemini.WithLogger(log),
//	)
//	dispatcher := router.New(router.WithAdapter(adapter))
//
// Errors returned by Handle carry an HTTP status through StatusCode():
// genai API errors keep the upstream code, malformed bodies are 400 and a
// missing key is 401.
package gemini
