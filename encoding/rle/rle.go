// Package rle implements the RLE/bit-packed hybrid encoding used for
// dictionary indices and repetition/definition levels.
//
// The stream is a sequence of runs. Each run starts with a ULEB128 header:
// when the low bit is 0 the run is bit-packed and holds (header>>1)*8 values
// packed LSB first at the given bit width; when the low bit is 1 the run
// repeats a single value, stored in ceil(bitWidth/8) little-endian bytes,
// (header>>1) times.
package rle

import (
	"errors"

	"github.com/mabel-dev/rugo/thrift"
)

var ErrTruncatedStream = errors.New("rle: encoded stream ends before the expected value count")

// Decode reads count unsigned values of the given bit width from the hybrid
// stream. Runs may overshoot count; the excess values are discarded, matching
// writers that pad the final bit-packed run to a multiple of 8.
func Decode(data []byte, bitWidth, count int) ([]uint32, error) {
	if bitWidth <= 0 || bitWidth > 32 {
		return nil, errors.New("rle: bit width out of range")
	}

	// count comes from untrusted metadata; cap the initial allocation at what
	// the input could possibly hold and let append grow past it if needed.
	capHint := count
	if max := 8 * len(data); capHint > max {
		capHint = max
	}
	values := make([]uint32, 0, capHint)
	r := thrift.NewReader(data)

	for len(values) < count {
		header, err := r.ReadUvarint()
		if err != nil {
			return nil, ErrTruncatedStream
		}

		if header&1 == 0 {
			// Bit-packed run of (header>>1) groups of 8 values. Each group
			// spans at least one byte, which bounds the group count before
			// the byte arithmetic can overflow.
			groups := header >> 1
			if groups > uint64(r.Remaining()) {
				return nil, ErrTruncatedStream
			}
			n := int(groups) * 8
			byteCount := (n*bitWidth + 7) / 8
			if r.Remaining() < byteCount {
				return nil, ErrTruncatedStream
			}

			var acc uint64
			var bits int
			for i := 0; i < n; i++ {
				for bits < bitWidth {
					b, _ := r.ReadByte()
					acc |= uint64(b) << bits
					bits += 8
				}
				values = append(values, uint32(acc&(1<<bitWidth-1)))
				acc >>= bitWidth
				bits -= bitWidth
			}
		} else {
			// RLE run: one value repeated (header>>1) times. The repetition
			// count costs no input bytes, so a hostile run can declare
			// billions; everything past the requested count is discardable
			// and is never materialized.
			n := header >> 1
			if remaining := uint64(count - len(values)); n > remaining {
				n = remaining
			}
			width := (bitWidth + 7) / 8
			if r.Remaining() < width {
				return nil, ErrTruncatedStream
			}
			var value uint32
			for i := 0; i < width; i++ {
				b, _ := r.ReadByte()
				value |= uint32(b) << (8 * i)
			}
			for i := uint64(0); i < n; i++ {
				values = append(values, value)
			}
		}
	}

	return values[:count], nil
}
