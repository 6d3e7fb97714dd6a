package rugo

// Helpers constructing parquet file images in memory for the tests: a small
// thrift compact protocol writer, value encoders, and a file assembler.

import (
	"encoding/binary"
	"math"

	"github.com/mabel-dev/rugo/compress"
	"github.com/mabel-dev/rugo/format"
)

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendZigzag(b []byte, v int64) []byte {
	return appendUvarint(b, uint64(v)<<1^uint64(v>>63))
}

// structWriter emits compact protocol fields with delta-encoded ids. Nested
// structs get their own writer over the shared buffer.
type structWriter struct {
	buf    *[]byte
	lastID int16
}

func newStructWriter(buf *[]byte) *structWriter {
	return &structWriter{buf: buf}
}

func (w *structWriter) fieldHeader(id int16, typ byte) {
	delta := id - w.lastID
	if delta >= 1 && delta <= 15 {
		*w.buf = append(*w.buf, byte(delta)<<4|typ)
	} else {
		*w.buf = append(*w.buf, typ)
		*w.buf = appendZigzag(*w.buf, int64(id))
	}
	w.lastID = id
}

func (w *structWriter) i32(id int16, v int32) {
	w.fieldHeader(id, 5)
	*w.buf = appendZigzag(*w.buf, int64(v))
}

func (w *structWriter) i64(id int16, v int64) {
	w.fieldHeader(id, 6)
	*w.buf = appendZigzag(*w.buf, v)
}

func (w *structWriter) binary(id int16, v []byte) {
	w.fieldHeader(id, 8)
	*w.buf = appendUvarint(*w.buf, uint64(len(v)))
	*w.buf = append(*w.buf, v...)
}

func (w *structWriter) listHeader(id int16, elemType byte, size int) {
	w.fieldHeader(id, 9)
	if size < 15 {
		*w.buf = append(*w.buf, byte(size)<<4|elemType)
	} else {
		*w.buf = append(*w.buf, 0xf0|elemType)
		*w.buf = appendUvarint(*w.buf, uint64(size))
	}
}

func (w *structWriter) structField(id int16) *structWriter {
	w.fieldHeader(id, 12)
	return newStructWriter(w.buf)
}

func (w *structWriter) end() {
	*w.buf = append(*w.buf, 0x00)
}

// Plain value encoders.

func plainInt32(values []int32) []byte {
	b := make([]byte, 0, 4*len(values))
	for _, v := range values {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return b
}

func plainInt64(values []int64) []byte {
	b := make([]byte, 0, 8*len(values))
	for _, v := range values {
		b = binary.LittleEndian.AppendUint64(b, uint64(v))
	}
	return b
}

func plainDouble(values []float64) []byte {
	b := make([]byte, 0, 8*len(values))
	for _, v := range values {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

func plainBoolean(values []bool) []byte {
	b := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			b[i/8] |= 1 << (i % 8)
		}
	}
	return b
}

func plainByteArrays(values []string) []byte {
	var b []byte
	for _, v := range values {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(v)))
		b = append(b, v...)
	}
	return b
}

// rleRun encodes one RLE run of count copies of value at a bit width that
// fits in a single byte.
func rleRun(count int, value byte) []byte {
	b := appendUvarint(nil, uint64(count)<<1|1)
	return append(b, value)
}

// defLevelSection encodes the definition level section of an optional
// column: count values at level 1, as one RLE run behind a 4-byte length.
func defLevelSection(count int) []byte {
	run := rleRun(count, 1)
	b := binary.LittleEndian.AppendUint32(nil, uint32(len(run)))
	return append(b, run...)
}

// fixtureColumn describes one column chunk of a generated file.
type fixtureColumn struct {
	name     string
	typ      format.Type
	optional bool
	encoding format.Encoding
	codec    format.CompressionCodec

	// values is the encoded value section of the data page, before the
	// definition level section is prepended.
	values []byte
	count  int

	// dict is the plain-encoded dictionary page payload, nil when the
	// column has no dictionary page.
	dict      []byte
	dictCount int

	// statistics, both generations; nil slices are omitted.
	legacyMin, legacyMax []byte
	minValue, maxValue   []byte
	nullCount            int64
	hasNullCount         bool

	// bloomOffset/bloomLength point at a filter blob placed by the caller;
	// bloomOffset 0 means no filter.
	bloomOffset int64
	bloomLength int32
}

func compressFixture(codec format.CompressionCodec, payload []byte) []byte {
	if codec == format.Uncompressed {
		return payload
	}
	c, err := compress.Lookup(codec)
	if err != nil {
		panic(err)
	}
	out, err := c.Encode(nil, payload)
	if err != nil {
		panic(err)
	}
	return out
}

func dataPageBytes(col *fixtureColumn) []byte {
	payload := col.values
	if col.optional {
		payload = append(defLevelSection(col.count), payload...)
	}
	compressed := compressFixture(col.codec, payload)

	var b []byte
	w := newStructWriter(&b)
	w.i32(1, int32(format.DataPage))
	w.i32(2, int32(len(payload)))
	w.i32(3, int32(len(compressed)))
	dph := w.structField(5)
	dph.i32(1, int32(col.count))
	dph.i32(2, int32(col.encoding))
	dph.end()
	w.end()

	return append(b, compressed...)
}

func dictPageBytes(col *fixtureColumn) []byte {
	compressed := compressFixture(col.codec, col.dict)

	var b []byte
	w := newStructWriter(&b)
	w.i32(1, int32(format.DictionaryPage))
	w.i32(2, int32(len(col.dict)))
	w.i32(3, int32(len(compressed)))
	dph := w.structField(7)
	dph.i32(1, int32(col.dictCount))
	dph.i32(2, int32(format.Plain))
	dph.end()
	w.end()

	return append(b, compressed...)
}

type chunkLayout struct {
	dataPageOffset int64
	dictPageOffset int64
	compressedSize int64
}

// buildFile assembles a single-row-group parquet file image from the given
// columns. numRows is the row count declared by the footer.
func buildFile(columns []fixtureColumn, numRows int64) []byte {
	return buildFileGroups([][]fixtureColumn{columns}, []int64{numRows})
}

// buildFileGroups assembles a parquet file image with one row group per
// entry of groups. Every group must declare the same schema; the schema is
// taken from the first group.
func buildFileGroups(groups [][]fixtureColumn, rows []int64) []byte {
	file := []byte("PAR1")

	layouts := make([][]chunkLayout, len(groups))
	for g, columns := range groups {
		layouts[g] = make([]chunkLayout, len(columns))
		for i := range columns {
			col := &columns[i]
			layout := &layouts[g][i]
			layout.dictPageOffset = -1
			if col.dict != nil {
				layout.dictPageOffset = int64(len(file))
				file = append(file, dictPageBytes(col)...)
			}
			layout.dataPageOffset = int64(len(file))
			start := layout.dictPageOffset
			if start < 0 {
				start = layout.dataPageOffset
			}
			file = append(file, dataPageBytes(col)...)
			layout.compressedSize = int64(len(file)) - start
		}
	}

	footer := buildFooter(groups, layouts, rows)
	file = append(file, footer...)
	file = binary.LittleEndian.AppendUint32(file, uint32(len(footer)))
	return append(file, "PAR1"...)
}

func buildFooter(groups [][]fixtureColumn, layouts [][]chunkLayout, rows []int64) []byte {
	schema := groups[0]
	var totalRows int64
	for _, n := range rows {
		totalRows += n
	}

	var b []byte
	w := newStructWriter(&b)
	w.i32(1, 1) // version

	// schema: root plus one leaf per column
	w.listHeader(2, 12, len(schema)+1)
	root := newStructWriter(&b)
	root.binary(4, []byte("schema"))
	root.i32(5, int32(len(schema)))
	root.end()
	for i := range schema {
		col := &schema[i]
		leaf := newStructWriter(&b)
		leaf.i32(1, int32(col.typ))
		rep := format.Required
		if col.optional {
			rep = format.Optional
		}
		leaf.i32(3, int32(rep))
		leaf.binary(4, []byte(col.name))
		leaf.end()
	}

	w.i64(3, totalRows)

	w.listHeader(4, 12, len(groups))
	for g, columns := range groups {
		rg := newStructWriter(&b)
		rg.listHeader(1, 12, len(columns))
		var totalBytes int64
		for i := range columns {
			col := &columns[i]
			layout := layouts[g][i]
			totalBytes += layout.compressedSize

			cc := newStructWriter(&b)
			md := cc.structField(3)
			md.i32(1, int32(col.typ))
			md.listHeader(2, 5, 1)
			b = appendZigzag(b, int64(col.encoding))
			md.listHeader(3, 8, 1)
			b = appendUvarint(b, uint64(len(col.name)))
			b = append(b, col.name...)
			md.i32(4, int32(col.codec))
			md.i64(5, int64(col.count))
			md.i64(6, layout.compressedSize)
			md.i64(7, layout.compressedSize)
			md.i64(9, layout.dataPageOffset)
			if layout.dictPageOffset >= 0 {
				md.i64(11, layout.dictPageOffset)
			}
			if col.legacyMin != nil || col.minValue != nil || col.hasNullCount {
				st := md.structField(12)
				if col.legacyMax != nil {
					st.binary(1, col.legacyMax)
				}
				if col.legacyMin != nil {
					st.binary(2, col.legacyMin)
				}
				if col.hasNullCount {
					st.i64(3, col.nullCount)
				}
				if col.maxValue != nil {
					st.binary(5, col.maxValue)
				}
				if col.minValue != nil {
					st.binary(6, col.minValue)
				}
				st.end()
			}
			if col.bloomOffset > 0 {
				md.i64(14, col.bloomOffset)
				if col.bloomLength > 0 {
					md.i32(15, col.bloomLength)
				}
			}
			md.end()
			cc.end()
		}
		rg.i64(2, totalBytes)
		rg.i64(3, rows[g])
		rg.end()
	}

	w.binary(6, []byte("rugo test writer"))
	w.end()
	return b
}

// standardColumns is the baseline fixture: five columns exercising every
// supported encoding with an uncompressed and a snappy chunk.
func standardColumns() []fixtureColumn {
	// DELTA_BINARY_PACKED of [100, 105, 103, 110]: block size 4, one
	// miniblock, min delta -2, adjusted deltas 7, 0, 9 at bit width 4.
	deltaStream := appendUvarint(nil, 4)
	deltaStream = appendUvarint(deltaStream, 1)
	deltaStream = appendUvarint(deltaStream, 4)
	deltaStream = appendZigzag(deltaStream, 100)
	deltaStream = appendZigzag(deltaStream, -2)
	deltaStream = append(deltaStream, 4, 0x07, 0x09)

	// Dictionary indices [0, 0, 1, 2, 2] as three RLE runs at bit width 2.
	indices := rleRun(2, 0)
	indices = append(indices, rleRun(1, 1)...)
	indices = append(indices, rleRun(2, 2)...)

	return []fixtureColumn{
		{
			name:     "id",
			typ:      format.Int64,
			encoding: format.Plain,
			codec:    format.Uncompressed,
			values:   plainInt64([]int64{1, 2, 3, 4, 5}),
			count:    5,

			legacyMin: plainInt64([]int64{-99}),
			legacyMax: plainInt64([]int64{99}),
			minValue:  plainInt64([]int64{1}),
			maxValue:  plainInt64([]int64{5}),

			nullCount:    0,
			hasNullCount: true,
		},
		{
			name:      "name",
			typ:       format.ByteArray,
			optional:  true,
			encoding:  format.PlainDictionary,
			codec:     format.Uncompressed,
			values:    indices,
			count:     5,
			dict:      plainByteArrays([]string{"a", "b", "c"}),
			dictCount: 3,
		},
		{
			name:     "score",
			typ:      format.Double,
			encoding: format.Plain,
			codec:    format.Snappy,
			values:   plainDouble([]float64{1.5, -2.25, 3.75, 0.5, 99.125}),
			count:    5,
		},
		{
			name:     "flag",
			typ:      format.Boolean,
			encoding: format.Plain,
			codec:    format.Uncompressed,
			values:   plainBoolean([]bool{true, false, true, true, false}),
			count:    5,
		},
		{
			name:     "steps",
			typ:      format.Int32,
			encoding: format.DeltaBinaryPacked,
			codec:    format.Uncompressed,
			values:   deltaStream,
			count:    4,
		},
	}
}
