// Package iffchunk indexes and extracts chunks of IFF-style containers.
//
// The heavy lifting is done by the chunk subpackage; this package is the
// traversal loop on top of it: parse a header, record it, skip to the next
// one.
package iffchunk

import (
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"github.com/danwakefield/fnmatch"
	"gopkg.in/yaml.v3"

	"github.com/skye-cyber/iffchunk/chunk"
	"github.com/skye-cyber/iffchunk/util"
)

// ChunkInfo describes one chunk of a container.
type ChunkInfo struct {
	ID         string `yaml:"id"`
	Size       uint32 `yaml:"size"`
	Offset     int64  `yaml:"offset"`
	DataOffset int64  `yaml:"data_offset"`
	SHA1       string `yaml:"sha1,omitempty"`
}

// Index is the ordered list of chunks found in a container.
type Index struct {
	Chunks []ChunkInfo `yaml:"chunks"`
}

// Scan walks the container from the stream's current position to its end
// and returns an index of every chunk. A stream that ends between chunk
// headers is an error; ending exactly at a header boundary is the normal
// end of the container.
func Scan(rs io.ReadSeeker, opts chunk.Options) (*Index, error) {
	return scan(rs, opts, false)
}

// ScanSums is Scan with a SHA-1 of every chunk payload added to the index.
func ScanSums(rs io.ReadSeeker, opts chunk.Options) (*Index, error) {
	return scan(rs, opts, true)
}

func scan(rs io.ReadSeeker, opts chunk.Options, sums bool) (*Index, error) {
	index := &Index{}

	for {
		c, offset, err := next(rs, opts)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return index, nil
		}

		info := ChunkInfo{
			ID:         string(c.Name()),
			Size:       c.Size(),
			Offset:     offset,
			DataOffset: offset + chunk.HeaderSize,
		}

		if sums {
			info.SHA1, err = util.SHA1Sum(c)
			if err != nil {
				return nil, err
			}
		}

		if err := c.Skip(); err != nil {
			return nil, err
		}

		index.Chunks = append(index.Chunks, info)
	}
}

// Find walks the container from the stream's current position and returns
// an open reader over the first chunk whose ID matches the glob pattern
// (case-insensitive). The stream is left at the start of that chunk's
// payload.
func Find(rs io.ReadSeeker, pattern string, opts chunk.Options) (*chunk.Reader, error) {
	for {
		c, _, err := next(rs, opts)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("no chunk matching %q", pattern)
		}

		if fnmatch.Match(pattern, string(c.Name()), fnmatch.FNM_IGNORECASE) {
			return c, nil
		}

		if err := c.Skip(); err != nil {
			return nil, err
		}
	}
}

// Extract copies the payload of the first chunk matching the glob pattern
// to out and leaves the stream at the following chunk's header. It returns
// the number of payload bytes written.
func Extract(rs io.ReadSeeker, pattern string, out io.Writer, opts chunk.Options) (int64, error) {
	c, err := Find(rs, pattern, opts)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, c)
	if err != nil {
		return n, err
	}

	return n, c.Skip()
}

// next parses the chunk header at the stream's current position. A nil
// reader with a nil error means the stream ended cleanly at a chunk
// boundary.
func next(rs io.ReadSeeker, opts chunk.Options) (*chunk.Reader, int64, error) {
	offset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, err
	}

	c, err := chunk.NewWithOptions(rs, opts)
	if err == nil {
		return c, offset, nil
	}

	if errors.Is(err, chunk.ErrTruncatedHeader) {
		end, serr := rs.Seek(0, io.SeekEnd)
		if serr == nil && end == offset {
			return nil, offset, nil
		}
	}

	return nil, 0, fmt.Errorf("chunk header at offset %d: %w", offset, err)
}

// Glob returns the entries whose ID matches the glob pattern,
// case-insensitive.
func (idx *Index) Glob(pattern string) *Index {
	filtered := &Index{}
	for _, info := range idx.Chunks {
		if fnmatch.Match(pattern, info.ID, fnmatch.FNM_IGNORECASE) {
			filtered.Chunks = append(filtered.Chunks, info)
		}
	}

	return filtered
}

// WriteText writes a human readable listing of the index.
func (idx *Index) WriteText(w io.Writer) {
	for _, info := range idx.Chunks {
		fmt.Fprintf(w, "%q  %d bytes at offset %d", info.ID, info.Size, info.Offset)
		if info.SHA1 != "" {
			fmt.Fprintf(w, "  sha1 %s", info.SHA1)
		}
		fmt.Fprintln(w)
	}
}

// WriteYAML writes the index as a YAML document.
func (idx *Index) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	if err := encoder.Encode(idx); err != nil {
		return err
	}

	return encoder.Close()
}

// WriteXML writes the index as an XML document.
func (idx *Index) WriteXML(w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	for _, info := range idx.Chunks {
		element := container.CreateElement("chunk")
		element.CreateAttr("id", info.ID)
		element.CreateAttr("size", fmt.Sprint(info.Size))
		element.CreateAttr("offset", fmt.Sprint(info.Offset))
		if info.SHA1 != "" {
			element.CreateAttr("sha1", info.SHA1)
		}
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
