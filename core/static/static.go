package static

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/response"
)

// DefaultIndex is the document served for the root path.
const DefaultIndex = "index.html"

// DefaultContentType is used for extensions missing from the table.
const DefaultContentType = "text/plain"

var (
	// ErrNotFound is rendered as 404 "404 Not Found".
	ErrNotFound = response.ErrNotFound.WithMessage("404 Not Found")

	// ErrReadFailed is rendered as 500 "500 Internal Server Error".
	ErrReadFailed = response.ErrInternalServerError.WithMessage("500 Internal Server Error")
)

var defaultTypes = map[string]string{
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".css":  "text/css",
	".html": "text/html",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".webp": "image/webp",
	".wasm": "application/wasm",
}

// Files serves documents from an fs.FS.
type Files struct {
	fsys  fs.FS
	index string
	types map[string]string
}

// Option configures Files.
type Option func(*Files)

// WithIndex sets the document served for "/".
func WithIndex(name string) Option {
	return func(f *Files) {
		if name = strings.TrimPrefix(name, "/"); name != "" {
			f.index = name
		}
	}
}

// WithContentType adds or overrides a table entry. ext may be given with or
// without the leading dot.
func WithContentType(ext, contentType string) Option {
	return func(f *Files) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.types[strings.ToLower(ext)] = contentType
	}
}

// New serves files from fsys, typically os.DirFS(dir) or an embed.FS.
func New(fsys fs.FS, opts ...Option) *Files {
	f := &Files{
		fsys:  fsys,
		index: DefaultIndex,
		types: make(map[string]string, len(defaultTypes)),
	}
	for ext, ct := range defaultTypes {
		f.types[ext] = ct
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Serve returns the response for a URL path.
func (f *Files) Serve(urlPath string) handler.Response {
	name := f.Resolve(urlPath)
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return response.Error(ErrNotFound)
		}
		return response.Error(ErrReadFailed.WithError(err))
	}
	return response.BytesWithStatus(data, f.ContentType(name), http.StatusOK)
}

// Resolve maps a URL path to a name inside the document root.
func (f *Files) Resolve(urlPath string) string {
	cleaned := path.Clean("/" + urlPath)
	if cleaned == "/" {
		return f.index
	}
	return strings.TrimPrefix(cleaned, "/")
}

// ContentType returns the table entry for name's extension.
func (f *Files) ContentType(name string) string {
	if ct, ok := f.types[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}
