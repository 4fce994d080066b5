package binder

import "errors"

var (
	// ErrUnsupportedMediaType indicates the Content-Type header names a media
	// type the binder cannot parse.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON indicates the request body is not valid JSON or
	// does not match the target type.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrBodyTooLarge indicates the body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("request body too large")
)
