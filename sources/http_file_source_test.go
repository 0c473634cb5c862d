package sources

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rangeServer(payload []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "file.bin", time.Time{}, bytes.NewReader(payload))
	}))
}

func TestHTTPFileReadSeek(t *testing.T) {
	payload := []byte("0123456789ABCDEF")
	srv := rangeServer(payload)
	defer srv.Close()

	h, err := NewHTTPFile(srv.URL)
	assert.NoError(t, err)
	assert.Equal(t, int64(16), h.Size)

	buf := make([]byte, 4)
	n, err := h.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "0123", string(buf))

	pos, err := h.Seek(10, io.SeekStart)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), pos)

	rest, err := ioutil.ReadAll(h)
	assert.NoError(t, err)
	assert.Equal(t, "ABCDEF", string(rest))

	n, err = h.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestHTTPFileSeekWhence(t *testing.T) {
	h := &HTTPFile{URL: "http://example.invalid/file", Size: 100}

	pos, err := h.Seek(10, io.SeekStart)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), pos)

	pos, err = h.Seek(5, io.SeekCurrent)
	assert.NoError(t, err)
	assert.Equal(t, int64(15), pos)

	pos, err = h.Seek(-20, io.SeekEnd)
	assert.NoError(t, err)
	assert.Equal(t, int64(80), pos)

	_, err = h.Seek(0, 42)
	assert.Error(t, err)

	_, err = h.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestOpenDispatch(t *testing.T) {
	payload := []byte("0123456789")
	srv := rangeServer(payload)
	defer srv.Close()

	remote, err := Open(srv.URL)
	assert.NoError(t, err)
	defer remote.Close()

	data, err := ioutil.ReadAll(remote)
	assert.NoError(t, err)
	assert.Equal(t, payload, data)

	file, err := ioutil.TempFile("", "sources-test")
	assert.NoError(t, err)
	defer os.Remove(file.Name())
	defer file.Close()

	_, err = file.Write(payload)
	assert.NoError(t, err)

	local, err := Open(file.Name())
	assert.NoError(t, err)
	defer local.Close()

	data, err = ioutil.ReadAll(local)
	assert.NoError(t, err)
	assert.Equal(t, payload, data)
}
