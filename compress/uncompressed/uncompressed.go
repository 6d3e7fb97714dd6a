// Package uncompressed provides the pass-through implementation of the
// UNCOMPRESSED parquet codec.
package uncompressed

import (
	"github.com/mabel-dev/rugo/compress"
	"github.com/mabel-dev/rugo/format"
)

func init() {
	compress.Register(new(Codec))
}

type Codec struct {
}

func (c *Codec) String() string {
	return "UNCOMPRESSED"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Uncompressed
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
