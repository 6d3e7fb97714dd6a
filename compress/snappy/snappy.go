// Package snappy implements the SNAPPY parquet compression codec.
package snappy

import (
	"github.com/klauspost/compress/snappy"
	"github.com/mabel-dev/rugo/compress"
	"github.com/mabel-dev/rugo/format"
)

func init() {
	compress.Register(new(Codec))
}

// Parquet uses the snappy block format, not the framed stream format, so the
// codec maps directly onto the slice APIs.
type Codec struct {
}

func (c *Codec) String() string {
	return "SNAPPY"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Snappy
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst, src), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst, src)
}
