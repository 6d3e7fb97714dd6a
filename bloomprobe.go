package rugo

import (
	"os"

	"github.com/mabel-dev/rugo/bloom"
)

// TestBloomFilter probes the bloom filter stored at the given offset for a
// plain-encoded value. length bounds the filter bytes; zero or negative
// means read to end of file, for footers that omit bloom_filter_length. A
// length overrunning the buffer fails with ErrOutOfBounds rather than being
// clamped. A false result is definitive; a true result may be a false
// positive.
func TestBloomFilter(data []byte, offset, length int64, value []byte) (bool, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return false, ErrOutOfBounds
	}
	end := int64(len(data))
	if length > 0 {
		if length > end-offset {
			return false, ErrOutOfBounds
		}
		end = offset + length
	}

	filter, err := bloom.Parse(data[offset:end])
	if err != nil {
		return false, err
	}
	return filter.CheckValue(value), nil
}

// TestBloomFilterFile is a convenience wrapper reading the file at path.
func TestBloomFilterFile(path string, offset, length int64, value []byte) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return TestBloomFilter(data, offset, length, value)
}
