// Package sources opens the byte streams the inspector reads containers
// from: local files, or remote files addressed by http(s) URL and read
// through range requests.
package sources

import (
	"io"
	"os"
	"strings"
)

// ReadSeekCloser groups the stream operations the chunk reader and the
// inspector need.
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Open returns a seekable stream over target, which may be a local file
// path or an http(s) URL. The caller owns the returned stream.
func Open(target string) (ReadSeekCloser, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return NewHTTPFile(target)
	}

	return os.Open(target)
}
