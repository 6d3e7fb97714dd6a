package rugo

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/mabel-dev/rugo/encoding/delta"
	"github.com/mabel-dev/rugo/encoding/plain"
	"github.com/mabel-dev/rugo/encoding/rle"
	"github.com/mabel-dev/rugo/format"
	"github.com/mabel-dev/rugo/thrift"
)

// Kind selects which value array of a DecodedColumn is populated.
type Kind int

const (
	KindInt32 Kind = iota
	KindInt64
	KindFloat32
	KindFloat64
	KindBoolean
	KindByteArray
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBoolean:
		return "boolean"
	case KindByteArray:
		return "byte_array"
	default:
		return "unknown"
	}
}

func kindOf(t format.Type) (Kind, bool) {
	switch t {
	case format.Int32:
		return KindInt32, true
	case format.Int64:
		return KindInt64, true
	case format.Float:
		return KindFloat32, true
	case format.Double:
		return KindFloat64, true
	case format.Boolean:
		return KindBoolean, true
	case format.ByteArray, format.FixedLenByteArray:
		return KindByteArray, true
	default:
		return 0, false
	}
}

// DecodedColumn is the decode result of one column chunk: exactly one value
// array is populated, selected by Kind, with a parallel null mask. When
// Success is false Err explains why and every array is empty.
type DecodedColumn struct {
	Name    string
	Kind    Kind
	Success bool
	Err     error

	Int32     []int32
	Int64     []int64
	Float32   []float32
	Float64   []float64
	Boolean   []bool
	ByteArray [][]byte

	// Nulls marks null positions. Definition levels are skipped rather than
	// materialized, so the mask is currently all false; its length still
	// matches the value count.
	Nulls []bool
}

// Len returns the number of decoded values.
func (c *DecodedColumn) Len() int {
	return len(c.Nulls)
}

// DecodedTable indexes decode results as [row group][requested column].
type DecodedTable struct {
	Columns   []string
	RowGroups [][]DecodedColumn
}

// ReadTable decodes the requested columns of every row group. An empty
// columns list means all columns, resolved from row group 0. Per-column
// failures are soft: the failing entry carries Success=false and Err while
// sibling columns decode normally. Only structural metadata corruption makes
// ReadTable itself fail.
func ReadTable(data []byte, columns []string) (*DecodedTable, error) {
	meta, err := ReadMetadata(data, nil)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 && len(meta.RowGroups) > 0 {
		for i := range meta.RowGroups[0].Columns {
			columns = append(columns, meta.RowGroups[0].Columns[i].Name)
		}
	}

	table := &DecodedTable{
		Columns:   columns,
		RowGroups: make([][]DecodedColumn, len(meta.RowGroups)),
	}

	for g := range meta.RowGroups {
		row := make([]DecodedColumn, len(columns))
		for i, name := range columns {
			if col := meta.Column(g, name); col != nil {
				row[i] = decodeChunk(data, col)
			} else {
				row[i] = DecodedColumn{Name: name, Err: ErrColumnNotFound}
			}
		}
		table.RowGroups[g] = row
	}
	return table, nil
}

// columnValues is the typed payload produced by one page decode.
type columnValues struct {
	kind       Kind
	int32s     []int32
	int64s     []int64
	float32s   []float32
	float64s   []float64
	bools      []bool
	byteArrays [][]byte
}

func (v *columnValues) length() int {
	switch v.kind {
	case KindInt32:
		return len(v.int32s)
	case KindInt64:
		return len(v.int64s)
	case KindFloat32:
		return len(v.float32s)
	case KindFloat64:
		return len(v.float64s)
	case KindBoolean:
		return len(v.bools)
	default:
		return len(v.byteArrays)
	}
}

func decodeChunk(data []byte, col *ColumnStats) DecodedColumn {
	out := DecodedColumn{Name: col.Name}

	kind, ok := kindOf(col.PhysicalType)
	if !ok {
		out.Err = fmt.Errorf("%w: %s", ErrUnsupportedType, col.PhysicalType)
		return out
	}
	out.Kind = kind

	values, err := decodeChunkValues(data, col, kind)
	if err != nil {
		out.Err = err
		return out
	}

	out.Success = true
	out.Nulls = make([]bool, values.length())
	out.Int32 = values.int32s
	out.Int64 = values.int64s
	out.Float32 = values.float32s
	out.Float64 = values.float64s
	out.Boolean = values.bools
	out.ByteArray = values.byteArrays
	return out
}

// decodeChunkValues runs the per-chunk state machine: bound the chunk, parse
// page headers, decompress, load the dictionary page if one leads the chunk,
// skip levels, and decode the data page values.
func decodeChunkValues(data []byte, col *ColumnStats, kind Kind) (columnValues, error) {
	none := columnValues{kind: kind}

	start := col.DataPageOffset
	if col.DictionaryPageOffset > 0 && col.DictionaryPageOffset < start {
		start = col.DictionaryPageOffset
	}
	if start < 0 || col.TotalCompressedSize <= 0 || start+col.TotalCompressedSize > int64(len(data)) {
		return none, ErrOutOfBounds
	}
	chunk := data[start : start+col.TotalCompressedSize]

	var dictionary *columnValues

	r := thrift.NewReader(chunk)
	header, err := decodePageHeader(r)
	if err != nil {
		return none, fmt.Errorf("rugo: parsing page header: %w", err)
	}

	if header.pageType == format.DictionaryPage {
		payload, next, err := pagePayload(chunk, r.Pos(), header.compressedSize)
		if err != nil {
			return none, err
		}
		raw, err := decompressPage(col.Codec, payload, header.uncompressedSize)
		if err != nil {
			return none, err
		}
		dict, err := decodeDictionary(col, kind, raw, int(header.dictNumValues))
		if err != nil {
			return none, err
		}
		dictionary = &dict

		chunk = chunk[next:]
		r = thrift.NewReader(chunk)
		if header, err = decodePageHeader(r); err != nil {
			return none, fmt.Errorf("rugo: parsing page header: %w", err)
		}
	}

	if header.pageType != format.DataPage {
		return none, fmt.Errorf("%w: found %s", ErrNotADataPage, header.pageType)
	}

	payload, _, err := pagePayload(chunk, r.Pos(), header.compressedSize)
	if err != nil {
		return none, err
	}
	if payload, err = decompressPage(col.Codec, payload, header.uncompressedSize); err != nil {
		return none, err
	}

	// Repetition levels precede definition levels; either section exists
	// only when the corresponding max level is positive.
	if payload, err = skipLevels(payload, col.MaxRepetitionLevel); err != nil {
		return none, err
	}
	if payload, err = skipLevels(payload, col.MaxDefinitionLevel); err != nil {
		return none, err
	}

	numValues := int(col.NumValues)
	if numValues <= 0 {
		numValues = int(header.numValues)
	}
	// Page value counts are 32 bit in the format; a chunk declaring more is
	// corrupt, and runs encoding many values per input byte would otherwise
	// materialize whatever it claims.
	if numValues > math.MaxInt32 {
		return none, fmt.Errorf("%w: chunk declares %d values", ErrValueCountMismatch, numValues)
	}

	switch header.encoding {
	case format.Plain:
		return decodePlainValues(col, kind, payload, numValues)

	case format.PlainDictionary, format.RLEDictionary:
		if dictionary == nil {
			return none, ErrDictionaryMissing
		}
		indices, err := rle.Decode(payload, indexBitWidth(dictionary.length()), numValues)
		if err != nil {
			return none, err
		}
		return substituteDictionary(dictionary, indices)

	case format.DeltaBinaryPacked:
		switch kind {
		case KindInt32:
			values, _, err := delta.DecodeInt32(payload)
			if err != nil {
				return none, err
			}
			if len(values) != numValues {
				return none, countMismatch(len(values), numValues)
			}
			return columnValues{kind: kind, int32s: values}, nil
		case KindInt64:
			values, _, err := delta.DecodeInt64(payload)
			if err != nil {
				return none, err
			}
			if len(values) != numValues {
				return none, countMismatch(len(values), numValues)
			}
			return columnValues{kind: kind, int64s: values}, nil
		default:
			return none, fmt.Errorf("%w: DELTA_BINARY_PACKED on %s", ErrUnsupportedEncoding, col.PhysicalType)
		}

	case format.DeltaByteArray:
		if kind != KindByteArray {
			return none, fmt.Errorf("%w: DELTA_BYTE_ARRAY on %s", ErrUnsupportedEncoding, col.PhysicalType)
		}
		values, err := delta.DecodeByteArray(payload)
		if err != nil {
			return none, err
		}
		if len(values) != numValues {
			return none, countMismatch(len(values), numValues)
		}
		return columnValues{kind: kind, byteArrays: values}, nil

	default:
		return none, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, header.encoding)
	}
}

func pagePayload(chunk []byte, pos int, compressedSize int32) (payload []byte, next int, err error) {
	if compressedSize < 0 || pos+int(compressedSize) > len(chunk) {
		return nil, 0, ErrOutOfBounds
	}
	return chunk[pos : pos+int(compressedSize)], pos + int(compressedSize), nil
}

func countMismatch(got, want int) error {
	return fmt.Errorf("%w: decoded %d, declared %d", ErrValueCountMismatch, got, want)
}

// indexBitWidth is ceil(log2(dictionarySize)) with a floor of 1, the width
// dictionary index streams are packed at.
func indexBitWidth(dictionarySize int) int {
	if dictionarySize <= 2 {
		return 1
	}
	return bits.Len(uint(dictionarySize - 1))
}

func decodePlainValues(col *ColumnStats, kind Kind, data []byte, count int) (columnValues, error) {
	values := columnValues{kind: kind}
	var err error

	switch col.PhysicalType {
	case format.Int32:
		values.int32s, err = plain.DecodeInt32(data, count)
	case format.Int64:
		values.int64s, err = plain.DecodeInt64(data, count)
	case format.Float:
		values.float32s, err = plain.DecodeFloat(data, count)
	case format.Double:
		values.float64s, err = plain.DecodeDouble(data, count)
	case format.Boolean:
		values.bools, err = plain.DecodeBoolean(data, count)
	case format.ByteArray:
		values.byteArrays, err = plain.DecodeByteArray(data, count)
	case format.FixedLenByteArray:
		values.byteArrays, err = plain.DecodeFixedLenByteArray(data, int(col.TypeLength), count)
	default:
		return values, fmt.Errorf("%w: %s", ErrUnsupportedType, col.PhysicalType)
	}
	if err != nil {
		return values, err
	}
	return values, nil
}

// decodeDictionary decodes a dictionary page's values, which are always
// plain-encoded. Writers that omit the header value count get it derived
// from the payload size.
func decodeDictionary(col *ColumnStats, kind Kind, data []byte, count int) (columnValues, error) {
	if count <= 0 {
		var err error
		if count, err = derivePlainCount(col, data); err != nil {
			return columnValues{kind: kind}, err
		}
	}
	return decodePlainValues(col, kind, data, count)
}

func derivePlainCount(col *ColumnStats, data []byte) (int, error) {
	switch col.PhysicalType {
	case format.Int32, format.Float:
		return len(data) / 4, nil
	case format.Int64, format.Double:
		return len(data) / 8, nil
	case format.FixedLenByteArray:
		if col.TypeLength <= 0 {
			return 0, fmt.Errorf("%w: fixed_len_byte_array without a length", ErrUnsupportedType)
		}
		return len(data) / int(col.TypeLength), nil
	case format.ByteArray:
		count := 0
		for pos := 0; pos+4 <= len(data); count++ {
			size := int(uint32(data[pos]) | uint32(data[pos+1])<<8 | uint32(data[pos+2])<<16 | uint32(data[pos+3])<<24)
			if size < 0 || pos+4+size > len(data) {
				break
			}
			pos += 4 + size
		}
		return count, nil
	default:
		return 0, fmt.Errorf("rugo: dictionary page declares no value count")
	}
}

func substituteDictionary(dict *columnValues, indices []uint32) (columnValues, error) {
	out := columnValues{kind: dict.kind}
	size := uint32(dict.length())
	for _, index := range indices {
		if index >= size {
			return out, fmt.Errorf("%w: %d >= %d", ErrInvalidDictionaryIndex, index, size)
		}
	}

	switch dict.kind {
	case KindInt32:
		out.int32s = make([]int32, len(indices))
		for i, index := range indices {
			out.int32s[i] = dict.int32s[index]
		}
	case KindInt64:
		out.int64s = make([]int64, len(indices))
		for i, index := range indices {
			out.int64s[i] = dict.int64s[index]
		}
	case KindFloat32:
		out.float32s = make([]float32, len(indices))
		for i, index := range indices {
			out.float32s[i] = dict.float32s[index]
		}
	case KindFloat64:
		out.float64s = make([]float64, len(indices))
		for i, index := range indices {
			out.float64s[i] = dict.float64s[index]
		}
	case KindBoolean:
		out.bools = make([]bool, len(indices))
		for i, index := range indices {
			out.bools[i] = dict.bools[index]
		}
	default:
		// Dictionary byte arrays are borrowed, not copied; the dictionary
		// outlives this call because both reference the input buffer.
		out.byteArrays = make([][]byte, len(indices))
		for i, index := range indices {
			out.byteArrays[i] = dict.byteArrays[index]
		}
	}
	return out, nil
}
