// Package lz4 implements the LZ4_RAW parquet compression codec, the raw
// block format that superseded the ambiguous framed LZ4 code.
package lz4

import (
	"io"

	"github.com/mabel-dev/rugo/compress"
	"github.com/mabel-dev/rugo/format"
	"github.com/pierrec/lz4/v4"
)

func init() {
	compress.Register(new(Codec))
	compress.Register(new(FrameCodec))
}

type Codec struct {
}

func (c *Codec) String() string {
	return "LZ4_RAW"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Lz4Raw
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	if limit := lz4.CompressBlockBound(len(src)); cap(dst) < limit {
		dst = make([]byte, limit)
	} else {
		dst = dst[:limit]
	}
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(src, dst)
	return dst[:n], err
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	// The decompressed size is not recorded in the block; callers size dst
	// from the page header and we grow if they undershoot.
	if cap(dst) == 0 {
		size := 4 * len(src)
		if size < 64 {
			size = 64
		}
		dst = make([]byte, size)
	} else {
		dst = dst[:cap(dst)]
	}
	for {
		n, err := lz4.UncompressBlock(src, dst)
		if err == nil {
			return dst[:n], nil
		}
		if len(dst) > 1<<30 {
			return dst[:0], err
		}
		dst = make([]byte, 2*len(dst))
	}
}

// FrameCodec implements the legacy LZ4 code using the lz4 frame format.
type FrameCodec struct {
	compress.Compressor
	compress.Decompressor
}

func (c *FrameCodec) String() string {
	return "LZ4"
}

func (c *FrameCodec) CompressionCodec() format.CompressionCodec {
	return format.Lz4
}

func (c *FrameCodec) Encode(dst, src []byte) ([]byte, error) {
	return c.Compressor.Encode(dst, src, func(w io.Writer) (compress.Writer, error) {
		return writer{lz4.NewWriter(w)}, nil
	})
}

func (c *FrameCodec) Decode(dst, src []byte) ([]byte, error) {
	return c.Decompressor.Decode(dst, src, func(r io.Reader) (compress.Reader, error) {
		return reader{lz4.NewReader(r)}, nil
	})
}

type reader struct{ *lz4.Reader }

func (r reader) Close() error { return nil }

func (r reader) Reset(rr io.Reader) error {
	if rr == nil {
		rr = devNull{}
	}
	r.Reader.Reset(rr)
	return nil
}

type writer struct{ *lz4.Writer }

func (w writer) Reset(ww io.Writer) {
	if ww == nil {
		ww = devNull{}
	}
	w.Writer.Reset(ww)
}

type devNull struct{}

func (devNull) Read([]byte) (int, error)  { return 0, io.EOF }
func (devNull) Write([]byte) (int, error) { return 0, nil }
