package sources

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPFile reads a remote file through HTTP range requests. Every Read
// issues one ranged GET; Seek is pure offset arithmetic and touches no
// network.
type HTTPFile struct {
	URL    string
	Offset int64
	Size   int64
}

// NewHTTPFile probes the remote file with a HEAD request to learn its size
// and returns a stream positioned at offset 0.
func NewHTTPFile(url string) (*HTTPFile, error) {
	resp, err := http.Head(url)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote file probe failed: %s", resp.Status)
	}

	if resp.ContentLength < 0 {
		return nil, fmt.Errorf("remote file size unknown: %s", url)
	}

	return &HTTPFile{URL: url, Size: resp.ContentLength}, nil
}

func (h *HTTPFile) Read(b []byte) (n int, err error) {
	if h.Offset >= h.Size {
		return 0, io.EOF
	}
	if max := h.Size - h.Offset; int64(len(b)) > max {
		b = b[:max]
	}

	rangedRequest, err := http.NewRequest("GET", h.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating request for %q: %v", h.URL, err)
	}

	rangeSpecifier := fmt.Sprintf("bytes=%v-%v", h.Offset, h.Offset+int64(len(b))-1)
	rangedRequest.Header.Add("Range", rangeSpecifier)
	rangedRequest.Header.Add("Accept-Encoding", "identity")

	rangedResponse, err := http.DefaultClient.Do(rangedRequest)
	if err != nil {
		return 0, fmt.Errorf("error executing request for %q: %v", h.URL, err)
	}
	defer rangedResponse.Body.Close()

	if rangedResponse.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("URL not found: %s", h.URL)
	} else if rangedResponse.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("ranged request not supported")
	} else if strings.Contains(rangedResponse.Header.Get("Content-Encoding"), "gzip") {
		return 0, fmt.Errorf("response from server was GZiped")
	}

	n, err = io.ReadFull(rangedResponse.Body, b)
	h.Offset += int64(n)
	if err != nil {
		return n, fmt.Errorf("failed to read response body for %v (%v): %v",
			h.URL, rangeSpecifier, err)
	}

	return n, nil
}

func (h *HTTPFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		h.Offset = offset
	case io.SeekCurrent:
		h.Offset += offset
	case io.SeekEnd:
		h.Offset = h.Size + offset
	default:
		return 0, fmt.Errorf("invalid whence value: %d", whence)
	}

	if h.Offset < 0 {
		return 0, fmt.Errorf("seek before start of file")
	}

	return h.Offset, nil
}

// Close is a no-op: range requests hold no connection open between reads.
func (h *HTTPFile) Close() error {
	return nil
}
