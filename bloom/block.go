// Package bloom implements the split-block bloom filters attached to parquet
// column chunks.
//
// https://github.com/apache/parquet-format/blob/master/BloomFilter.md
package bloom

// BlockSize is the size of bloom filter blocks in bytes.
const BlockSize = 32

// Block is a bloom filter block as defined by the parquet format: 8 lanes of
// 32 bits, each receiving one salted probe bit per inserted value.
type Block [8]uint32

const (
	salt0 = 0x47b6137b
	salt1 = 0x44974d91
	salt2 = 0x8824ad5b
	salt3 = 0xa2b7289d
	salt4 = 0x705495c7
	salt5 = 0x2df1424b
	salt6 = 0x9efc4947
	salt7 = 0x5c6bfb31
)

func mask(x uint32) Block {
	return Block{
		0: 1 << ((x * salt0) >> 27),
		1: 1 << ((x * salt1) >> 27),
		2: 1 << ((x * salt2) >> 27),
		3: 1 << ((x * salt3) >> 27),
		4: 1 << ((x * salt4) >> 27),
		5: 1 << ((x * salt5) >> 27),
		6: 1 << ((x * salt6) >> 27),
		7: 1 << ((x * salt7) >> 27),
	}
}

// Insert sets the 8 probe bits of x in the block.
func (b *Block) Insert(x uint32) {
	masked := mask(x)
	b[0] |= masked[0]
	b[1] |= masked[1]
	b[2] |= masked[2]
	b[3] |= masked[3]
	b[4] |= masked[4]
	b[5] |= masked[5]
	b[6] |= masked[6]
	b[7] |= masked[7]
}

// Check tests whether all 8 probe bits of x are set in the block.
func (b *Block) Check(x uint32) bool {
	masked := mask(x)
	return ((b[0] & masked[0]) != 0) &&
		((b[1] & masked[1]) != 0) &&
		((b[2] & masked[2]) != 0) &&
		((b[3] & masked[3]) != 0) &&
		((b[4] & masked[4]) != 0) &&
		((b[5] & masked[5]) != 0) &&
		((b[6] & masked[6]) != 0) &&
		((b[7] & masked[7]) != 0)
}
