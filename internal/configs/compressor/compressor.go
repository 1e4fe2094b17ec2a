package compressor

import (
	"bytes"
	"compress/gzip"
	"io"
)

// Compressor gzips request payloads.
type Compressor struct {
	level int
}

// New returns a Compressor using the first valid gzip level in levels,
// gzip.DefaultCompression otherwise.
func New(levels ...int) *Compressor {
	c := &Compressor{level: gzip.DefaultCompression}
	for _, l := range levels {
		if l >= gzip.HuffmanOnly && l <= gzip.BestCompression {
			c.level = l
			break
		}
	}
	return c
}

// Encoding is the Content-Encoding value of compressed payloads.
func (c *Compressor) Encoding() string {
	return "gzip"
}

// Compress gzips data.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := gzw.Write(data); err != nil {
		_ = gzw.Close()
		return nil, err
	}
	if err := gzw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gzr.Close()
	return io.ReadAll(gzr)
}
