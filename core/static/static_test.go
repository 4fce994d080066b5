package static_test

import (
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liverelay/core/response"
	"github.com/dmitrymomot/liverelay/core/static"
)

var site = fstest.MapFS{
	"index.html":     {Data: []byte("<h1>live</h1>")},
	"js/main.js":     {Data: []byte("console.log(1)")},
	"css/site.CSS":   {Data: []byte("body{}")},
	"img/logo.png":   {Data: []byte{0x89, 'P', 'N', 'G'}},
	"notes.markdown": {Data: []byte("# notes")},
	"home.htm":       {Data: []byte("home")},
}

func render(t *testing.T, files *static.Files, path string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	rec := httptest.NewRecorder()
	err := files.Serve(path)(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec, err
}

func TestFiles_Serve(t *testing.T) {
	t.Parallel()

	files := static.New(site)

	t.Run("root_serves_index", func(t *testing.T) {
		t.Parallel()

		rec, err := render(t, files, "/")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<h1>live</h1>", rec.Body.String())
	})

	t.Run("content_types", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"/js/main.js":     "application/javascript",
			"/css/site.CSS":   "text/css",
			"/img/logo.png":   "image/png",
			"/notes.markdown": "text/plain",
		}
		for path, want := range cases {
			rec, err := render(t, files, path)
			require.NoError(t, err, path)
			assert.Equal(t, want, rec.Header().Get("Content-Type"), path)
		}
	})

	t.Run("missing_file_is_404", func(t *testing.T) {
		t.Parallel()

		_, err := render(t, files, "/nope.js")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, response.StatusOf(err))
		assert.Equal(t, "404 Not Found", err.Error())
	})

	t.Run("directory_read_is_500", func(t *testing.T) {
		t.Parallel()

		_, err := render(t, files, "/js/")
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, response.StatusOf(err))
		assert.Equal(t, "500 Internal Server Error", err.Error())
	})

	t.Run("traversal_stays_in_root", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "js/main.js", files.Resolve("/../../js/main.js"))
		assert.Equal(t, "index.html", files.Resolve("/.."))
		rec, err := render(t, files, "/../js/main.js")
		require.NoError(t, err)
		assert.Equal(t, "console.log(1)", rec.Body.String())
	})
}

type brokenFS struct{}

func (brokenFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("input/output error")}
}

func TestFiles_ReadFailure(t *testing.T) {
	t.Parallel()

	_, err := render(t, static.New(brokenFS{}), "/index.html")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, response.StatusOf(err))
	assert.Equal(t, "500 Internal Server Error", err.Error())
}

func TestFiles_Options(t *testing.T) {
	t.Parallel()

	files := static.New(site, static.WithIndex("/home.htm"), static.WithContentType("htm", "text/html"))

	rec, err := render(t, files, "/")
	require.NoError(t, err)
	assert.Equal(t, "home", rec.Body.String())
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
}
