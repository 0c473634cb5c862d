package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/skye-cyber/iffchunk"
	"github.com/skye-cyber/iffchunk/chunk"
	"github.com/skye-cyber/iffchunk/sources"
)

func main() {
	var pattern string
	var format string
	var extract string
	var output string
	var sums bool
	var littleEndian bool
	var inclHeader bool
	var noAlign bool

	flag.StringVar(&pattern, "p", "*", "Only list chunks whose ID matches the glob pattern")
	flag.StringVar(&format, "f", "text", "Listing format: text, yaml or xml")
	flag.StringVar(&extract, "x", "", "Extract the payload of the first chunk matching the glob pattern")
	flag.StringVar(&output, "o", "", "Output file for -x, defaults to stdout")
	flag.BoolVar(&sums, "c", false, "Include a SHA-1 of every chunk payload in the listing")
	flag.BoolVar(&littleEndian, "le", false, "Size fields are little-endian")
	flag.BoolVar(&inclHeader, "incl", false, "Size fields include the 8 byte header")
	flag.BoolVar(&noAlign, "noalign", false, "Disable 2 byte chunk alignment")

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Target file paths or URLs expected")
		os.Exit(1)
	}

	opts := chunk.Options{
		Align:              !noAlign,
		ByteOrder:          binary.BigEndian,
		SizeIncludesHeader: inclHeader,
	}
	if littleEndian {
		opts.ByteOrder = binary.LittleEndian
	}

	exitCode := 0
	for _, target := range args {
		var err error
		if extract != "" {
			err = extractChunk(target, extract, output, opts)
		} else {
			err = listChunks(target, pattern, format, sums, opts)
		}

		if err != nil {
			fmt.Fprintln(os.Stderr, target+": "+err.Error())
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

func listChunks(target, pattern, format string, sums bool, opts chunk.Options) error {
	stream, err := sources.Open(target)
	if err != nil {
		return err
	}
	defer stream.Close()

	var index *iffchunk.Index
	if sums {
		index, err = iffchunk.ScanSums(stream, opts)
	} else {
		index, err = iffchunk.Scan(stream, opts)
	}
	if err != nil {
		return err
	}

	index = index.Glob(pattern)

	switch format {
	case "text":
		fmt.Println(target + ":")
		index.WriteText(os.Stdout)
		return nil
	case "yaml":
		return index.WriteYAML(os.Stdout)
	case "xml":
		return index.WriteXML(os.Stdout)
	default:
		return fmt.Errorf("unknown listing format: %q", format)
	}
}

func extractChunk(target, pattern, output string, opts chunk.Options) error {
	stream, err := sources.Open(target)
	if err != nil {
		return err
	}
	defer stream.Close()

	c, err := iffchunk.Find(stream, pattern, opts)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if output != "" {
		file, err := os.OpenFile(output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	progress := progressbar.DefaultBytes(
		int64(c.Size()),
		"Extracting "+string(c.Name())+": ",
	)

	if _, err = io.Copy(io.MultiWriter(out, progress), c); err != nil {
		return err
	}

	return c.Skip()
}
