// Package chunk reads single IFF-style chunks from a seekable byte stream.
//
// A chunk starts with an 8 byte header: a 4 byte identifier followed by a
// 4 byte unsigned size field. The payload follows the header, and when
// 2 byte alignment is in effect an odd-sized payload is followed by one pad
// byte. A Reader covers exactly one chunk; walking a container means
// skipping the current chunk and constructing a new Reader at the position
// that leaves the stream at.
package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the fixed length of a chunk header in bytes.
const HeaderSize = 8

var (
	// ErrClosed is returned by Read, Seek and Tell once the chunk has
	// been skipped or closed.
	ErrClosed = errors.New("chunk is closed")

	// ErrTruncatedHeader is returned by the constructors when the stream
	// ends before a complete 8 byte header could be read.
	ErrTruncatedHeader = errors.New("not enough bytes to read a complete chunk header")

	// ErrInvalidSize is returned by the constructors when a
	// header-inclusive size field is smaller than the header itself.
	ErrInvalidSize = errors.New("size field is smaller than the chunk header")
)

// Options control how a chunk header is interpreted.
type Options struct {
	// Align assumes 2 byte alignment: odd-sized payloads are followed by
	// a pad byte that Skip and Seek account for but Read never returns.
	Align bool

	// ByteOrder of the size field. Defaults to binary.BigEndian.
	ByteOrder binary.ByteOrder

	// SizeIncludesHeader marks the size field as counting the 8 byte
	// header in addition to the payload.
	SizeIncludesHeader bool
}

// DefaultOptions match the common IFF conventions: aligned chunks with a
// big-endian, payload-only size field.
func DefaultOptions() Options {
	return Options{Align: true, ByteOrder: binary.BigEndian}
}

// Reader is a bounded view over one chunk of an underlying stream. It
// implements io.Reader, io.Seeker and io.Closer, with all positions clamped
// to the chunk's data region.
//
// A Reader borrows the caller's stream: every Read, Seek and Skip moves the
// shared stream cursor. Interleaving other uses of the same stream, or
// using the Reader from multiple goroutines, requires external
// serialization.
type Reader struct {
	stream    io.ReadSeeker
	name      [4]byte
	size      uint32 // payload length, header excluded
	dataStart int64
	dataEnd   int64 // payload end plus the pad byte, if any
	closed    bool
}

// New reads a chunk header from the stream's current position using
// DefaultOptions.
func New(stream io.ReadSeeker) (*Reader, error) {
	return NewWithOptions(stream, DefaultOptions())
}

// NewWithOptions reads an 8 byte chunk header from the stream's current
// position and returns a Reader positioned at the start of the payload.
// The identifier bytes are taken verbatim and never validated.
func NewWithOptions(stream io.ReadSeeker, opts Options) (*Reader, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(stream, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncatedHeader
		}
		return nil, err
	}

	byteOrder := opts.ByteOrder
	if byteOrder == nil {
		byteOrder = binary.BigEndian
	}

	size := byteOrder.Uint32(header[4:8])
	if opts.SizeIncludesHeader {
		if size < HeaderSize {
			return nil, ErrInvalidSize
		}
		size -= HeaderSize
	}

	dataStart, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		stream:    stream,
		size:      size,
		dataStart: dataStart,
		dataEnd:   dataStart + int64(size),
	}
	copy(r.name[:], header[:4])

	if opts.Align && size%2 != 0 {
		r.dataEnd++
	}

	return r, nil
}

// Read fills b with payload bytes, never crossing the end of the payload.
// Once the payload is consumed it returns io.EOF; the pad byte of an
// odd-sized chunk is never returned.
func (r *Reader) Read(b []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}

	pos, err := r.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	remaining := r.dataStart + int64(r.size) - pos
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(b)) > remaining {
		b = b[:remaining]
	}

	return r.stream.Read(b)
}

// Seek moves the stream within the chunk's data region. The target is
// clamped silently to the region's bounds, pad byte included, and the
// returned position is relative to the start of the payload.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = r.dataStart + offset
	case io.SeekCurrent:
		pos, err := r.stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		target = pos + offset
	case io.SeekEnd:
		target = r.dataEnd + offset
	default:
		return 0, fmt.Errorf("invalid whence value: %d", whence)
	}

	if target < r.dataStart {
		target = r.dataStart
	}
	if target > r.dataEnd {
		target = r.dataEnd
	}

	if _, err := r.stream.Seek(target, io.SeekStart); err != nil {
		return 0, err
	}

	return target - r.dataStart, nil
}

// Tell returns the current position relative to the start of the payload.
func (r *Reader) Tell() (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}

	pos, err := r.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	return pos - r.dataStart, nil
}

// Skip jumps the stream to the end of the chunk, past any unread payload
// and the pad byte, leaving it at the next chunk's header. Further Read,
// Seek and Tell calls fail with ErrClosed. Calling Skip again is a no-op.
func (r *Reader) Skip() error {
	if r.closed {
		return nil
	}

	if _, err := r.stream.Seek(r.dataEnd, io.SeekStart); err != nil {
		return err
	}

	r.closed = true
	return nil
}

// Close skips to the end of the chunk. The underlying stream is not
// touched beyond repositioning; closing it remains the caller's job.
func (r *Reader) Close() error {
	return r.Skip()
}

// Name returns a copy of the 4 identifier bytes. Valid after Close.
func (r *Reader) Name() []byte {
	name := make([]byte, 4)
	copy(name, r.name[:])
	return name
}

// Size returns the payload length in bytes, header excluded. Valid after
// Close.
func (r *Reader) Size() uint32 {
	return r.size
}

// IsTTY reports whether the chunk is attached to a terminal. It isn't.
func (r *Reader) IsTTY() bool {
	return false
}
