// Package delta implements the DELTA_BINARY_PACKED and DELTA_BYTE_ARRAY
// encodings.
package delta

import (
	"errors"
	"fmt"

	"github.com/mabel-dev/rugo/thrift"
)

var (
	ErrTruncatedStream = errors.New("delta: encoded stream ends before the expected value count")
	ErrInvalidHeader   = errors.New("delta: invalid block header")
	ErrInvalidPrefix   = errors.New("delta: prefix length exceeds previous value length")
)

// DecodeInt64 reads a DELTA_BINARY_PACKED stream of 64 bit integers and
// returns the decoded values along with the unconsumed tail of data. The tail
// matters for DELTA_BYTE_ARRAY, which concatenates two such streams.
func DecodeInt64(data []byte) ([]int64, []byte, error) {
	r := thrift.NewReader(data)

	blockSize, err := r.ReadUvarint()
	if err != nil {
		return nil, nil, ErrTruncatedStream
	}
	numMiniblocks, err := r.ReadUvarint()
	if err != nil {
		return nil, nil, ErrTruncatedStream
	}
	totalCount, err := r.ReadUvarint()
	if err != nil {
		return nil, nil, ErrTruncatedStream
	}
	firstValue, err := r.ReadVarint()
	if err != nil {
		return nil, nil, ErrTruncatedStream
	}

	if blockSize == 0 || numMiniblocks == 0 || blockSize%numMiniblocks != 0 {
		return nil, nil, fmt.Errorf("%w: block size %d, %d miniblocks", ErrInvalidHeader, blockSize, numMiniblocks)
	}
	// Real writers use block sizes of a few thousand values; anything past
	// this is a corrupt or hostile header.
	if blockSize > 1<<20 {
		return nil, nil, fmt.Errorf("%w: block size %d", ErrInvalidHeader, blockSize)
	}
	miniblockSize := int(blockSize / numMiniblocks)

	// totalCount is untrusted; width 0 miniblocks mean it can legitimately
	// exceed the input size, so it only seeds the capacity up to a bound and
	// the slice grows from there.
	capHint := totalCount
	if capHint > uint64(len(data)) {
		capHint = uint64(len(data))
	}
	values := make([]int64, 0, capHint)
	if totalCount > 0 {
		values = append(values, firstValue)
	}
	last := firstValue

	widths := make([]byte, numMiniblocks)

	for uint64(len(values)) < totalCount {
		minDelta, err := r.ReadVarint()
		if err != nil {
			return nil, nil, ErrTruncatedStream
		}
		for i := range widths {
			if widths[i], err = r.ReadByte(); err != nil {
				return nil, nil, ErrTruncatedStream
			}
			if widths[i] > 64 {
				return nil, nil, fmt.Errorf("%w: miniblock bit width %d", ErrInvalidHeader, widths[i])
			}
		}

		// Miniblocks are stored in full, but a writer stops emitting them
		// once the value count is satisfied, leaving only width bytes for
		// the rest of the block.
		for _, width := range widths {
			if uint64(len(values)) >= totalCount {
				break
			}
			bitWidth := int(width)
			byteCount := (miniblockSize*bitWidth + 7) / 8
			if r.Remaining() < byteCount {
				return nil, nil, ErrTruncatedStream
			}

			var acc uint64
			var bits int
			for i := 0; i < miniblockSize; i++ {
				var delta uint64
				if bitWidth > 0 {
					for bits < bitWidth {
						b, _ := r.ReadByte()
						acc |= uint64(b) << bits
						bits += 8
					}
					if bitWidth == 64 {
						delta = acc
						acc, bits = 0, 0
					} else {
						delta = acc & (1<<bitWidth - 1)
						acc >>= bitWidth
						bits -= bitWidth
					}
				}
				if uint64(len(values)) < totalCount {
					last += minDelta + int64(delta)
					values = append(values, last)
				}
			}
		}
	}

	return values, data[r.Pos():], nil
}

// DecodeInt32 reads a DELTA_BINARY_PACKED stream of 32 bit integers.
func DecodeInt32(data []byte) ([]int32, []byte, error) {
	wide, rest, err := DecodeInt64(data)
	if err != nil {
		return nil, nil, err
	}
	values := make([]int32, len(wide))
	for i, v := range wide {
		values[i] = int32(v)
	}
	return values, rest, nil
}

// DecodeByteArray reads a DELTA_BYTE_ARRAY stream: a DELTA_BINARY_PACKED
// stream of prefix lengths, one of suffix lengths, then the concatenated
// suffix bytes. Each value shares its first prefixLength bytes with the
// previous value.
func DecodeByteArray(data []byte) ([][]byte, error) {
	prefixes, rest, err := DecodeInt32(data)
	if err != nil {
		return nil, fmt.Errorf("delta: decoding prefix lengths: %w", err)
	}
	suffixes, rest, err := DecodeInt32(rest)
	if err != nil {
		return nil, fmt.Errorf("delta: decoding suffix lengths: %w", err)
	}
	if len(prefixes) != len(suffixes) {
		return nil, fmt.Errorf("delta: %d prefix lengths but %d suffix lengths", len(prefixes), len(suffixes))
	}

	values := make([][]byte, len(prefixes))
	var previous []byte

	for i := range values {
		prefix, suffix := int(prefixes[i]), int(suffixes[i])
		if prefix < 0 || suffix < 0 {
			return nil, fmt.Errorf("delta: negative length at value %d", i)
		}
		if prefix > len(previous) {
			return nil, fmt.Errorf("%w: %d > %d at value %d", ErrInvalidPrefix, prefix, len(previous), i)
		}
		if suffix > len(rest) {
			return nil, ErrTruncatedStream
		}

		value := make([]byte, 0, prefix+suffix)
		value = append(value, previous[:prefix]...)
		value = append(value, rest[:suffix]...)
		rest = rest[suffix:]

		values[i] = value
		previous = value
	}

	return values, nil
}
