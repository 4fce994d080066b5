package router

import (
	"net/http"
	"strings"
)

// Route is the outcome of classifying a request.
type Route int

const (
	Static Route = iota
	Upgrade
	API
	Unmapped
)

func (r Route) String() string {
	switch r {
	case Upgrade:
		return "upgrade"
	case API:
		return "api"
	case Unmapped:
		return "unmapped"
	case Static:
		return "static"
	}
	return "unknown"
}

// DefaultAPIPrefix is the reserved path prefix for API calls.
const DefaultAPIPrefix = "/api/"

// DefaultAPISuffixes are the path suffixes handled by the API adapter.
var DefaultAPISuffixes = []string{"/chat/completions", "/embeddings", "/models"}

// Classifier decides the route of a request. The zero value uses
// DefaultAPIPrefix and DefaultAPISuffixes.
type Classifier struct {
	APIPrefix   string
	APISuffixes []string
}

// Classify returns the route for a request. No current rule inspects the
// query string.
func (c Classifier) Classify(path, query string, header http.Header) Route {
	if isUpgrade(header) {
		return Upgrade
	}

	suffixes := c.APISuffixes
	if suffixes == nil {
		suffixes = DefaultAPISuffixes
	}
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return API
		}
	}

	prefix := c.APIPrefix
	if prefix == "" {
		prefix = DefaultAPIPrefix
	}
	if strings.HasPrefix(path, prefix) {
		return Unmapped
	}

	return Static
}

// Classify uses the default classifier.
func Classify(path, query string, header http.Header) Route {
	return Classifier{}.Classify(path, query, header)
}

func isUpgrade(header http.Header) bool {
	for _, v := range header.Values("Upgrade") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "websocket") {
				return true
			}
		}
	}
	return false
}
