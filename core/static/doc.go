// Package static serves files from a fixed document root.
//
// Paths are cleaned before lookup, so requests can never escape the root.
// The root path maps to a default document (index.html unless configured).
// Content types come from a fixed extension table; unknown extensions are
// served as text/plain.
//
// A missing file answers 404 with the body "404 Not Found"; every other
// read failure, including reading a directory, answers 500 with
// "500 Internal Server Error".
//
//	files := static.New(os.DirFS("static"))
//	d := router.New(router.WithFiles(files))
package static
