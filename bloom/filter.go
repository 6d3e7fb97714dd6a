package bloom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/mabel-dev/rugo/format"
	"github.com/mabel-dev/rugo/thrift"
)

var (
	ErrMisalignedBitset     = errors.New("bloom: bitset length is not a multiple of the block size")
	ErrUnsupportedAlgorithm = errors.New("bloom: unsupported filter algorithm")
	ErrUnsupportedHash      = errors.New("bloom: unsupported hash function")
	ErrTruncatedFilter      = errors.New("bloom: bitset shorter than the header declares")
)

// Filter is an in-memory split-block bloom filter.
type Filter []Block

// NewFilter returns an empty filter of numBlocks blocks, for building filters
// in tests or probing tools.
func NewFilter(numBlocks int) Filter {
	return make(Filter, numBlocks)
}

// blockIndex selects the block a 64 bit hash falls into. Power-of-two block
// counts take the top log2(n) bits of the hash; other counts reduce the high
// 32 bits modulo n.
func blockIndex(x uint64, n int) int {
	if n&(n-1) == 0 {
		shift := 64 - bits.TrailingZeros(uint(n))
		return int(x >> shift & uint64(n-1))
	}
	return int((x >> 32) % uint64(n))
}

// Block returns a pointer to the block that the given hash selects.
func (f Filter) Block(x uint64) *Block {
	return &f[blockIndex(x, len(f))]
}

// InsertHash adds a 64 bit hash to the filter.
func (f Filter) InsertHash(x uint64) {
	f.Block(x).Insert(uint32(x))
}

// CheckHash tests whether a 64 bit hash may be present in the filter.
func (f Filter) CheckHash(x uint64) bool {
	return f.Block(x).Check(uint32(x))
}

// InsertValue hashes the plain-encoded value with XXH64 and inserts it.
func (f Filter) InsertValue(value []byte) {
	f.InsertHash(xxhash.Sum64(value))
}

// CheckValue tests whether the plain-encoded value may be present. A false
// result is definitive; a true result may be a false positive.
func (f Filter) CheckValue(value []byte) bool {
	return f.CheckHash(xxhash.Sum64(value))
}

// Bytes serializes the filter bitset in the little-endian layout stored in
// parquet files.
func (f Filter) Bytes() []byte {
	b := make([]byte, 0, len(f)*BlockSize)
	for i := range f {
		for _, word := range f[i] {
			b = binary.LittleEndian.AppendUint32(b, word)
		}
	}
	return b
}

// FilterFromBytes interprets a raw bitset as a filter.
func FilterFromBytes(bitset []byte) (Filter, error) {
	if len(bitset) == 0 || len(bitset)%BlockSize != 0 {
		return nil, ErrMisalignedBitset
	}
	f := make(Filter, len(bitset)/BlockSize)
	for i := range f {
		for j := range f[i] {
			f[i][j] = binary.LittleEndian.Uint32(bitset[i*BlockSize+4*j:])
		}
	}
	return f, nil
}

// Parse reads a serialized bloom filter: a compact protocol BloomFilterHeader
// immediately followed by the bitset. Some writers store the bitset inline as
// a binary field of the header instead; both layouts are accepted. The header
// declares the bitset length and the algorithm, hash, and compression in use;
// only split-block XXH64 uncompressed filters are supported, which is all
// parquet defines today.
func Parse(data []byte) (Filter, error) {
	r := thrift.NewReader(data)

	numBytes := -1
	algorithm := int16(format.BloomFilterSplitBlock)
	hash := int16(format.BloomHashXxHash)
	var inline []byte

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return nil, fmt.Errorf("bloom: reading filter header: %w", err)
		}
		if typ == thrift.TypeStop {
			break
		}

		switch id {
		case 1: // numBytes, or the bitset itself in the inline layout
			switch typ {
			case thrift.TypeI32:
				v, err := r.ReadI32()
				if err != nil {
					return nil, err
				}
				numBytes = int(v)
			case thrift.TypeBinary:
				if inline, err = r.ReadBytes(); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("bloom: numBytes has wire type %d", typ)
			}
		case 2: // algorithm union
			if algorithm, err = readUnionTag(r, typ); err != nil {
				return nil, err
			}
		case 3: // hash union
			if hash, err = readUnionTag(r, typ); err != nil {
				return nil, err
			}
		default:
			if err := r.Skip(typ); err != nil {
				return nil, err
			}
		}
		lastID = id
	}

	if algorithm != format.BloomFilterSplitBlock {
		return nil, ErrUnsupportedAlgorithm
	}
	if hash != format.BloomHashXxHash {
		return nil, ErrUnsupportedHash
	}
	if inline != nil {
		return FilterFromBytes(inline)
	}
	if numBytes < 0 {
		return nil, errors.New("bloom: filter header does not declare a bitset length")
	}
	if numBytes == 0 || numBytes%BlockSize != 0 {
		return nil, ErrMisalignedBitset
	}
	if r.Remaining() < numBytes {
		return nil, ErrTruncatedFilter
	}

	return FilterFromBytes(data[r.Pos() : r.Pos()+numBytes])
}

// Union fields are structs holding a single empty struct whose field id names
// the selected variant.
func readUnionTag(r *thrift.Reader, typ byte) (int16, error) {
	if typ != thrift.TypeStruct {
		return 0, fmt.Errorf("bloom: union has wire type %d", typ)
	}
	selected := int16(-1)
	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return 0, err
		}
		if typ == thrift.TypeStop {
			return selected, nil
		}
		if selected < 0 {
			selected = id
		}
		if err := r.Skip(typ); err != nil {
			return 0, err
		}
		lastID = id
	}
}
