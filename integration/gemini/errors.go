package gemini

import (
	"errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/dmitrymomot/liverelay/core/binder"
	"github.com/dmitrymomot/liverelay/core/response"
)

var (
	ErrMissingAPIKey        = response.ErrUnauthorized.WithMessage("missing API key")
	ErrUnknownEndpoint      = response.ErrNotFound.WithMessage("unknown API endpoint")
	ErrMethodNotAllowed     = response.ErrMethodNotAllowed.WithMessage("method not allowed")
	ErrNoMessages           = response.ErrBadRequest.WithMessage("messages must not be empty")
	ErrEmptyInput           = response.ErrBadRequest.WithMessage("input must not be empty")
	ErrUnsupportedImageURL  = response.ErrBadRequest.WithMessage("only data URLs are supported for image_url")
	ErrUnsupportedEncoding  = response.ErrBadRequest.WithMessage("encoding_format must be float or base64")
	ErrNoBackend            = errors.New("gemini: backend factory is not configured")
	ErrClientCreationFailed = errors.New("gemini: failed to create client")
)

// upstreamError converts a failed Gemini call into an error carrying the
// HTTP status to report. API errors keep their code; anything else is 500.
func upstreamError(err error) error {
	if err == nil {
		return nil
	}
	var hErr response.HTTPError
	if errors.As(err, &hErr) {
		return err
	}

	status := http.StatusInternalServerError
	message := err.Error()

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status, message = apiStatus(apiErr)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		status, message = apiStatus(*apiErrPtr)
	}
	return response.NewHTTPError(status, message).WithError(err)
}

func apiStatus(e genai.APIError) (int, string) {
	status := e.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	message := e.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return status, message
}

// bindError maps binder failures: unsupported media types stay 415, an
// oversized body keeps its 413, everything else is a bad request.
func bindError(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return response.ErrUnsupportedMediaType.WithMessage(err.Error())
	case response.StatusOf(err) == http.StatusRequestEntityTooLarge:
		return response.ErrRequestEntityTooLarge.WithMessage(err.Error())
	case errors.Is(err, binder.ErrBodyTooLarge):
		return response.ErrRequestEntityTooLarge.WithMessage(err.Error())
	}
	return response.ErrBadRequest.WithMessage(err.Error())
}
