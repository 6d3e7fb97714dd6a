package rugo

import (
	"encoding/binary"
	"fmt"

	"github.com/mabel-dev/rugo/compress"
	"github.com/mabel-dev/rugo/format"
	"github.com/mabel-dev/rugo/thrift"

	// Codecs registered for page decompression.
	_ "github.com/mabel-dev/rugo/compress/snappy"
	_ "github.com/mabel-dev/rugo/compress/uncompressed"
	_ "github.com/mabel-dev/rugo/compress/zstd"
)

// pageHeader is the transient result of parsing one page's thrift header.
type pageHeader struct {
	pageType         format.PageType
	uncompressedSize int32
	compressedSize   int32

	// data page header fields
	numValues int32
	encoding  format.Encoding

	// dictionary page header fields
	dictNumValues int32
	dictEncoding  format.Encoding
}

func decodePageHeader(r *thrift.Reader) (pageHeader, error) {
	h := pageHeader{pageType: -1}

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return h, err
		}
		if typ == thrift.TypeStop {
			return h, nil
		}

		switch id {
		case 1: // type
			v, err := readI32Field(r, typ, "page type")
			if err != nil {
				return h, err
			}
			h.pageType = format.PageType(v)
		case 2: // uncompressed_page_size
			if h.uncompressedSize, err = readI32Field(r, typ, "uncompressed_page_size"); err != nil {
				return h, err
			}
		case 3: // compressed_page_size
			if h.compressedSize, err = readI32Field(r, typ, "compressed_page_size"); err != nil {
				return h, err
			}
		case 5: // data_page_header
			if typ != thrift.TypeStruct {
				return h, fmt.Errorf("data_page_header has wire type %d", typ)
			}
			if h.numValues, h.encoding, err = decodePageSubHeader(r); err != nil {
				return h, err
			}
		case 7: // dictionary_page_header
			if typ != thrift.TypeStruct {
				return h, fmt.Errorf("dictionary_page_header has wire type %d", typ)
			}
			if h.dictNumValues, h.dictEncoding, err = decodePageSubHeader(r); err != nil {
				return h, err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return h, err
			}
		}
		lastID = id
	}
}

// Data page and dictionary page headers share their leading layout:
// field 1 is the value count, field 2 the encoding.
func decodePageSubHeader(r *thrift.Reader) (numValues int32, encoding format.Encoding, err error) {
	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return 0, 0, err
		}
		if typ == thrift.TypeStop {
			return numValues, encoding, nil
		}

		switch id {
		case 1:
			if numValues, err = readI32Field(r, typ, "num_values"); err != nil {
				return 0, 0, err
			}
		case 2:
			v, err := readI32Field(r, typ, "encoding")
			if err != nil {
				return 0, 0, err
			}
			encoding = format.Encoding(v)
		default:
			if err = r.Skip(typ); err != nil {
				return 0, 0, err
			}
		}
		lastID = id
	}
}

// decompressPage resolves a page's payload bytes. Only the codecs CanDecode
// admits are exercised here; everything else is rejected up front.
func decompressPage(codec format.CompressionCodec, data []byte, uncompressedSize int32) ([]byte, error) {
	if codec == format.Uncompressed {
		return data, nil
	}
	if codec != format.Snappy && codec != format.Zstd {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}

	c, err := compress.Lookup(codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}
	out, err := c.Decode(make([]byte, 0, uncompressedSize), data)
	if err != nil {
		return nil, fmt.Errorf("rugo: decompressing %s page: %w", codec, err)
	}
	if int32(len(out)) != uncompressedSize {
		return nil, fmt.Errorf("%w: got %d bytes, header declares %d", ErrDecompressedSizeMismatch, len(out), uncompressedSize)
	}
	return out, nil
}

// skipLevels drops a 4-byte length-prefixed RLE level section when the
// column's max level requires one; a max level of 0 consumes nothing.
func skipLevels(data []byte, maxLevel int) ([]byte, error) {
	if maxLevel <= 0 {
		return data, nil
	}
	if len(data) < 4 {
		return nil, ErrOutOfBounds
	}
	n := int64(binary.LittleEndian.Uint32(data))
	if n > int64(len(data)-4) {
		return nil, ErrOutOfBounds
	}
	return data[4+n:], nil
}
