package rugo

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/mabel-dev/rugo/format"
	"github.com/mabel-dev/rugo/thrift"
)

// MetadataOptions tunes how much of the footer is parsed. The zero value
// parses everything.
type MetadataOptions struct {
	// SchemaOnly skips row group parsing entirely; FileStats.RowGroups comes
	// back empty but NumRowGroups still reports the declared count.
	SchemaOnly bool

	// SkipStatistics structurally skips the per-chunk statistics and bloom
	// filter pointers, for faster metadata-only scans.
	SkipStatistics bool

	// MaxRowGroups caps how many row groups are parsed; the remainder is
	// skipped structurally. Zero or negative means all.
	MaxRowGroups int
}

// SchemaElement is a node of the file's schema tree.
type SchemaElement struct {
	Name             string
	Type             format.Type
	HasType          bool
	TypeLength       int32
	RepetitionType   format.FieldRepetitionType
	ConvertedType    format.ConvertedType
	HasConvertedType bool
	Scale            int32
	Precision        int32
	FieldID          int32
	LogicalType      string
	Children         []*SchemaElement
}

// Leaf reports whether the element carries values rather than children.
func (e *SchemaElement) Leaf() bool { return len(e.Children) == 0 }

// SchemaField is one entry of the flattened schema_columns view: a canonical
// dotted column name mapped to its physical and logical types.
type SchemaField struct {
	Name         string
	PhysicalType format.Type
	TypeLength   int32
	Type         string
	Nullable     bool
}

// Statistics holds the optional min/max/null-count/distinct-count of a column
// chunk. Min and Max are the plain-encoded bytes as stored in the footer.
type Statistics struct {
	Min              []byte
	Max              []byte
	NullCount        int64
	HasNullCount     bool
	DistinctCount    int64
	HasDistinctCount bool
}

// ColumnStats describes one column chunk within one row group.
type ColumnStats struct {
	Name                  string
	PathInSchema          []string
	PhysicalType          format.Type
	TypeLength            int32
	LogicalType           string
	Encodings             []format.Encoding
	Codec                 format.CompressionCodec
	NumValues             int64
	TotalUncompressedSize int64
	TotalCompressedSize   int64
	DataPageOffset        int64
	IndexPageOffset       int64
	DictionaryPageOffset  int64
	Statistics            *Statistics
	BloomFilterOffset     int64
	BloomFilterLength     int32
	KeyValueMetadata      map[string]string
	FilePath              string
	FileOffset            int64
	MaxDefinitionLevel    int
	MaxRepetitionLevel    int
}

// RowGroupStats is the ordered column chunk list of one row group.
type RowGroupStats struct {
	Columns       []ColumnStats
	TotalByteSize int64
	NumRows       int64
}

// FileStats is the complete parse result of a parquet footer. It never
// references page bytes.
type FileStats struct {
	Version          int32
	NumRows          int64
	CreatedBy        string
	KeyValueMetadata map[string]string
	Root             *SchemaElement
	SchemaColumns    []SchemaField
	RowGroups        []RowGroupStats

	// NumRowGroups is the count declared by the footer, which exceeds
	// len(RowGroups) when MaxRowGroups truncated parsing.
	NumRowGroups int
}

// Column returns the stats of the named column in the given row group, or nil.
func (fs *FileStats) Column(rowGroup int, name string) *ColumnStats {
	if rowGroup < 0 || rowGroup >= len(fs.RowGroups) {
		return nil
	}
	columns := fs.RowGroups[rowGroup].Columns
	for i := range columns {
		if columns[i].Name == name {
			return &columns[i]
		}
	}
	return nil
}

// ReadMetadata validates the PAR1 trailer and parses the footer into a
// FileStats. The buffer must hold a complete file image.
func ReadMetadata(data []byte, opts *MetadataOptions) (*FileStats, error) {
	if opts == nil {
		opts = new(MetadataOptions)
	}
	footer, err := footerBytes(data)
	if err != nil {
		return nil, err
	}
	return decodeFileMetaData(thrift.NewReader(footer), opts)
}

// ReadMetadataFile is a convenience wrapper reading the file at path.
func ReadMetadataFile(path string, opts *MetadataOptions) (*FileStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadMetadata(data, opts)
}

func footerBytes(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, ErrBufferTooSmall
	}
	if string(data[len(data)-4:]) != "PAR1" {
		return nil, ErrNotAParquetFile
	}
	footerLen := int64(binary.LittleEndian.Uint32(data[len(data)-8:]))
	if footerLen+8 > int64(len(data)) {
		return nil, ErrFooterLengthInvalid
	}
	end := len(data) - 8
	return data[end-int(footerLen) : end], nil
}

func decodeFileMetaData(r *thrift.Reader, opts *MetadataOptions) (*FileStats, error) {
	fs := &FileStats{}

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return nil, metadataError("footer", err)
		}
		if typ == thrift.TypeStop {
			break
		}

		switch id {
		case 1: // version
			if typ != thrift.TypeI32 {
				return nil, metadataError("footer", fmt.Errorf("version has wire type %d", typ))
			}
			if fs.Version, err = r.ReadI32(); err != nil {
				return nil, metadataError("footer", err)
			}
		case 2: // schema
			if typ != thrift.TypeList {
				return nil, metadataError("schema", fmt.Errorf("schema has wire type %d", typ))
			}
			if err = decodeSchema(r, fs); err != nil {
				return nil, metadataError("schema", err)
			}
		case 3: // num_rows
			if typ != thrift.TypeI64 {
				return nil, metadataError("footer", fmt.Errorf("num_rows has wire type %d", typ))
			}
			if fs.NumRows, err = r.ReadI64(); err != nil {
				return nil, metadataError("footer", err)
			}
		case 4: // row_groups
			if typ != thrift.TypeList {
				return nil, metadataError("row groups", fmt.Errorf("row_groups has wire type %d", typ))
			}
			if err = decodeRowGroups(r, fs, opts); err != nil {
				return nil, metadataError("row groups", err)
			}
		case 5: // key_value_metadata
			if typ != thrift.TypeList {
				return nil, metadataError("footer", fmt.Errorf("key_value_metadata has wire type %d", typ))
			}
			if fs.KeyValueMetadata, err = decodeKeyValueList(r); err != nil {
				return nil, metadataError("footer", err)
			}
		case 6: // created_by
			if typ != thrift.TypeBinary {
				return nil, metadataError("footer", fmt.Errorf("created_by has wire type %d", typ))
			}
			if fs.CreatedBy, err = r.ReadString(); err != nil {
				return nil, metadataError("footer", err)
			}
		default:
			if err = r.Skip(typ); err != nil {
				return nil, metadataError("footer", err)
			}
		}
		lastID = id
	}

	if fs.Root == nil {
		return nil, metadataError("schema", fmt.Errorf("footer carries no schema"))
	}

	enrichColumnStats(fs)
	return fs, nil
}

func decodeSchema(r *thrift.Reader, fs *FileStats) error {
	size, elemType, err := r.ReadListHeader()
	if err != nil {
		return err
	}
	if elemType != thrift.TypeStruct {
		return fmt.Errorf("schema elements have wire type %d", elemType)
	}
	if size == 0 {
		return fmt.Errorf("schema list is empty")
	}
	if err := checkListSize(r, size, "schema"); err != nil {
		return err
	}

	elements := make([]*SchemaElement, size)
	counts := make([]int32, size)
	for i := range elements {
		if elements[i], counts[i], err = decodeSchemaElement(r); err != nil {
			return err
		}
	}

	// The footer stores the tree as a flattened pre-order walk; each node
	// declares how many of the following elements are its children.
	root, next, err := buildSchemaTree(elements, counts, 0)
	if err != nil {
		return err
	}
	if next != len(elements) {
		return fmt.Errorf("schema tree consumed %d of %d elements", next, len(elements))
	}

	fs.Root = root
	fs.SchemaColumns = flattenSchema(root)
	return nil
}

func decodeSchemaElement(r *thrift.Reader) (*SchemaElement, int32, error) {
	e := &SchemaElement{}
	var numChildren int32

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return nil, 0, err
		}
		if typ == thrift.TypeStop {
			break
		}

		switch id {
		case 1: // type
			v, err := readI32Field(r, typ, "type")
			if err != nil {
				return nil, 0, err
			}
			e.Type, e.HasType = format.Type(v), true
		case 2: // type_length
			if e.TypeLength, err = readI32Field(r, typ, "type_length"); err != nil {
				return nil, 0, err
			}
		case 3: // repetition_type
			v, err := readI32Field(r, typ, "repetition_type")
			if err != nil {
				return nil, 0, err
			}
			e.RepetitionType = format.FieldRepetitionType(v)
		case 4: // name
			if typ != thrift.TypeBinary {
				return nil, 0, fmt.Errorf("schema element name has wire type %d", typ)
			}
			if e.Name, err = r.ReadString(); err != nil {
				return nil, 0, err
			}
		case 5: // num_children
			if numChildren, err = readI32Field(r, typ, "num_children"); err != nil {
				return nil, 0, err
			}
		case 6: // converted_type
			v, err := readI32Field(r, typ, "converted_type")
			if err != nil {
				return nil, 0, err
			}
			e.ConvertedType, e.HasConvertedType = format.ConvertedType(v), true
		case 7: // scale
			if e.Scale, err = readI32Field(r, typ, "scale"); err != nil {
				return nil, 0, err
			}
		case 8: // precision
			if e.Precision, err = readI32Field(r, typ, "precision"); err != nil {
				return nil, 0, err
			}
		case 9: // field_id
			if e.FieldID, err = readI32Field(r, typ, "field_id"); err != nil {
				return nil, 0, err
			}
		case 10: // logicalType
			if typ != thrift.TypeStruct {
				return nil, 0, fmt.Errorf("logicalType has wire type %d", typ)
			}
			if e.LogicalType, err = decodeLogicalType(r); err != nil {
				return nil, 0, err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return nil, 0, err
			}
		}
		lastID = id
	}

	return e, numChildren, nil
}

func readI32Field(r *thrift.Reader, typ byte, name string) (int32, error) {
	if typ != thrift.TypeI32 {
		return 0, fmt.Errorf("%s has wire type %d", name, typ)
	}
	return r.ReadI32()
}

// checkListSize rejects list headers whose declared element count cannot fit
// in the remaining input. Every element occupies at least one byte, so a size
// past this bound is corrupt and must not reach allocation.
func checkListSize(r *thrift.Reader, size int, name string) error {
	if size < 0 || size > r.Remaining() {
		return fmt.Errorf("%s declares %d elements with %d bytes remaining", name, size, r.Remaining())
	}
	return nil
}

func buildSchemaTree(elements []*SchemaElement, counts []int32, pos int) (*SchemaElement, int, error) {
	if pos >= len(elements) {
		return nil, pos, fmt.Errorf("schema tree truncated at element %d", pos)
	}
	node := elements[pos]
	numChildren := counts[pos]
	pos++
	for i := int32(0); i < numChildren; i++ {
		child, next, err := buildSchemaTree(elements, counts, pos)
		if err != nil {
			return nil, next, err
		}
		node.Children = append(node.Children, child)
		pos = next
	}
	return node, pos, nil
}

// decodeLogicalType renders the LogicalType union as the vocabulary shared
// with ConvertedType.LogicalString. Variants carrying parameters (decimal,
// time, timestamp, integer) consume their own struct; the empty variants are
// skipped generically.
func decodeLogicalType(r *thrift.Reader) (string, error) {
	name := ""

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return "", err
		}
		if typ == thrift.TypeStop {
			return name, nil
		}
		lastID = id

		switch id {
		case 5: // DecimalType{1: scale, 2: precision}
			scale, precision, err := decodeDecimalType(r, typ)
			if err != nil {
				return "", err
			}
			name = fmt.Sprintf("decimal(%d,%d)", precision, scale)
			continue
		case 7, 8: // TimeType / TimestampType{2: unit union}
			unit, err := decodeTimeUnitSuffix(r, typ)
			if err != nil {
				return "", err
			}
			if id == 7 {
				name = "time[" + unit + "]"
			} else {
				name = "timestamp[" + unit + "]"
			}
			continue
		case 10: // IntType{1: bitWidth, 2: isSigned}
			if name, err = decodeIntType(r, typ); err != nil {
				return "", err
			}
			continue
		case 1:
			name = "varchar"
		case 2:
			name = "map"
		case 3:
			name = "array"
		case 4:
			name = "enum"
		case 6:
			name = "date32[day]"
		case 12:
			name = "json"
		case 13:
			name = "bson"
		case 14:
			name = "uuid"
		case 15:
			name = "float16"
		}

		if err := r.Skip(typ); err != nil {
			return "", err
		}
	}
}

func decodeDecimalType(r *thrift.Reader, typ byte) (scale, precision int32, err error) {
	if typ != thrift.TypeStruct {
		return 0, 0, fmt.Errorf("decimal type has wire type %d", typ)
	}
	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return 0, 0, err
		}
		if typ == thrift.TypeStop {
			return scale, precision, nil
		}
		switch id {
		case 1:
			if scale, err = readI32Field(r, typ, "scale"); err != nil {
				return 0, 0, err
			}
		case 2:
			if precision, err = readI32Field(r, typ, "precision"); err != nil {
				return 0, 0, err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return 0, 0, err
			}
		}
		lastID = id
	}
}

// decodeTimeUnitSuffix consumes a TimeType or TimestampType struct and
// returns the unit suffix: "ms", "us", or "ns".
func decodeTimeUnitSuffix(r *thrift.Reader, typ byte) (string, error) {
	if typ != thrift.TypeStruct {
		return "", fmt.Errorf("time type has wire type %d", typ)
	}
	unit := "ms"

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return "", err
		}
		if typ == thrift.TypeStop {
			return unit, nil
		}
		if id == 2 && typ == thrift.TypeStruct {
			// TimeUnit union: 1=MILLIS, 2=MICROS, 3=NANOS.
			var unitLastID int16
			for {
				unitID, unitTyp, err := r.ReadFieldHeader(unitLastID)
				if err != nil {
					return "", err
				}
				if unitTyp == thrift.TypeStop {
					break
				}
				switch unitID {
				case 1:
					unit = "ms"
				case 2:
					unit = "us"
				case 3:
					unit = "ns"
				}
				if err := r.Skip(unitTyp); err != nil {
					return "", err
				}
				unitLastID = unitID
			}
		} else if err := r.Skip(typ); err != nil {
			return "", err
		}
		lastID = id
	}
}

func decodeIntType(r *thrift.Reader, typ byte) (string, error) {
	if typ != thrift.TypeStruct {
		return "", fmt.Errorf("integer type has wire type %d", typ)
	}
	bitWidth := 32
	signed := true

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return "", err
		}
		if typ == thrift.TypeStop {
			break
		}
		switch {
		case id == 1 && typ == thrift.TypeI8:
			b, err := r.ReadByte()
			if err != nil {
				return "", err
			}
			bitWidth = int(b)
		case id == 2:
			if signed, err = r.ReadBool(typ); err != nil {
				return "", err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return "", err
			}
		}
		lastID = id
	}

	prefix := "int"
	if !signed {
		prefix = "uint"
	}
	return prefix + strconv.Itoa(bitWidth), nil
}

func decodeRowGroups(r *thrift.Reader, fs *FileStats, opts *MetadataOptions) error {
	size, elemType, err := r.ReadListHeader()
	if err != nil {
		return err
	}
	if elemType != thrift.TypeStruct {
		return fmt.Errorf("row group elements have wire type %d", elemType)
	}
	if err := checkListSize(r, size, "row_groups"); err != nil {
		return err
	}
	fs.NumRowGroups = size

	limit := size
	if opts.SchemaOnly {
		limit = 0
	} else if opts.MaxRowGroups > 0 && opts.MaxRowGroups < limit {
		limit = opts.MaxRowGroups
	}

	fs.RowGroups = make([]RowGroupStats, 0, limit)
	for i := 0; i < limit; i++ {
		rg, err := decodeRowGroup(r, opts)
		if err != nil {
			return err
		}
		fs.RowGroups = append(fs.RowGroups, rg)
	}

	// Skip the remainder structurally so the cursor stays positioned for the
	// fields following row_groups.
	for i := limit; i < size; i++ {
		if err := r.SkipStruct(); err != nil {
			return err
		}
	}
	return nil
}

func decodeRowGroup(r *thrift.Reader, opts *MetadataOptions) (RowGroupStats, error) {
	rg := RowGroupStats{}

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return rg, err
		}
		if typ == thrift.TypeStop {
			return rg, nil
		}

		switch id {
		case 1: // columns
			if typ != thrift.TypeList {
				return rg, fmt.Errorf("row group columns have wire type %d", typ)
			}
			size, elemType, err := r.ReadListHeader()
			if err != nil {
				return rg, err
			}
			if elemType != thrift.TypeStruct {
				return rg, fmt.Errorf("column chunk elements have wire type %d", elemType)
			}
			if err := checkListSize(r, size, "columns"); err != nil {
				return rg, err
			}
			rg.Columns = make([]ColumnStats, size)
			for i := range rg.Columns {
				if err := decodeColumnChunk(r, &rg.Columns[i], opts); err != nil {
					return rg, err
				}
			}
		case 2: // total_byte_size
			if typ != thrift.TypeI64 {
				return rg, fmt.Errorf("total_byte_size has wire type %d", typ)
			}
			if rg.TotalByteSize, err = r.ReadI64(); err != nil {
				return rg, err
			}
		case 3: // num_rows
			if typ != thrift.TypeI64 {
				return rg, fmt.Errorf("row group num_rows has wire type %d", typ)
			}
			if rg.NumRows, err = r.ReadI64(); err != nil {
				return rg, err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return rg, err
			}
		}
		lastID = id
	}
}

func decodeColumnChunk(r *thrift.Reader, col *ColumnStats, opts *MetadataOptions) error {
	col.IndexPageOffset = -1
	col.DictionaryPageOffset = -1
	col.BloomFilterOffset = -1

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return err
		}
		if typ == thrift.TypeStop {
			return nil
		}

		switch id {
		case 1: // file_path
			if typ != thrift.TypeBinary {
				return fmt.Errorf("column chunk file_path has wire type %d", typ)
			}
			if col.FilePath, err = r.ReadString(); err != nil {
				return err
			}
		case 2: // file_offset
			if typ != thrift.TypeI64 {
				return fmt.Errorf("column chunk file_offset has wire type %d", typ)
			}
			if col.FileOffset, err = r.ReadI64(); err != nil {
				return err
			}
		case 3: // meta_data
			if typ != thrift.TypeStruct {
				return fmt.Errorf("column chunk meta_data has wire type %d", typ)
			}
			if err = decodeColumnMetaData(r, col, opts); err != nil {
				return metadataError("column metadata", err)
			}
		default:
			if err = r.Skip(typ); err != nil {
				return err
			}
		}
		lastID = id
	}
}

func decodeColumnMetaData(r *thrift.Reader, col *ColumnStats, opts *MetadataOptions) error {
	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return err
		}
		if typ == thrift.TypeStop {
			return nil
		}

		switch id {
		case 1: // type
			v, err := readI32Field(r, typ, "type")
			if err != nil {
				return err
			}
			col.PhysicalType = format.Type(v)
		case 2: // encodings
			if typ != thrift.TypeList {
				return fmt.Errorf("encodings has wire type %d", typ)
			}
			size, elemType, err := r.ReadListHeader()
			if err != nil {
				return err
			}
			if elemType != thrift.TypeI32 {
				return fmt.Errorf("encoding elements have wire type %d", elemType)
			}
			if err := checkListSize(r, size, "encodings"); err != nil {
				return err
			}
			col.Encodings = make([]format.Encoding, size)
			for i := range col.Encodings {
				v, err := r.ReadI32()
				if err != nil {
					return err
				}
				col.Encodings[i] = format.Encoding(v)
			}
		case 3: // path_in_schema
			if typ != thrift.TypeList {
				return fmt.Errorf("path_in_schema has wire type %d", typ)
			}
			size, elemType, err := r.ReadListHeader()
			if err != nil {
				return err
			}
			if elemType != thrift.TypeBinary {
				return fmt.Errorf("path elements have wire type %d", elemType)
			}
			if err := checkListSize(r, size, "path_in_schema"); err != nil {
				return err
			}
			col.PathInSchema = make([]string, size)
			for i := range col.PathInSchema {
				if col.PathInSchema[i], err = r.ReadString(); err != nil {
					return err
				}
			}
		case 4: // codec
			v, err := readI32Field(r, typ, "codec")
			if err != nil {
				return err
			}
			col.Codec = format.CompressionCodec(v)
		case 5: // num_values
			if col.NumValues, err = readI64Field(r, typ, "num_values"); err != nil {
				return err
			}
		case 6: // total_uncompressed_size
			if col.TotalUncompressedSize, err = readI64Field(r, typ, "total_uncompressed_size"); err != nil {
				return err
			}
		case 7: // total_compressed_size
			if col.TotalCompressedSize, err = readI64Field(r, typ, "total_compressed_size"); err != nil {
				return err
			}
		case 8: // key_value_metadata
			if typ != thrift.TypeList {
				return fmt.Errorf("key_value_metadata has wire type %d", typ)
			}
			if col.KeyValueMetadata, err = decodeKeyValueList(r); err != nil {
				return err
			}
		case 9: // data_page_offset
			if col.DataPageOffset, err = readI64Field(r, typ, "data_page_offset"); err != nil {
				return err
			}
		case 10: // index_page_offset
			if col.IndexPageOffset, err = readI64Field(r, typ, "index_page_offset"); err != nil {
				return err
			}
		case 11: // dictionary_page_offset
			if col.DictionaryPageOffset, err = readI64Field(r, typ, "dictionary_page_offset"); err != nil {
				return err
			}
		case 12: // statistics
			if typ != thrift.TypeStruct {
				return fmt.Errorf("statistics has wire type %d", typ)
			}
			if opts.SkipStatistics {
				if err = r.SkipStruct(); err != nil {
					return err
				}
				break
			}
			if col.Statistics, err = decodeStatistics(r); err != nil {
				return err
			}
		case 14: // bloom_filter_offset
			if opts.SkipStatistics {
				if err = r.Skip(typ); err != nil {
					return err
				}
				break
			}
			if col.BloomFilterOffset, err = readI64Field(r, typ, "bloom_filter_offset"); err != nil {
				return err
			}
		case 15: // bloom_filter_length
			if opts.SkipStatistics {
				if err = r.Skip(typ); err != nil {
					return err
				}
				break
			}
			if col.BloomFilterLength, err = readI32Field(r, typ, "bloom_filter_length"); err != nil {
				return err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return err
			}
		}
		lastID = id
	}
}

func readI64Field(r *thrift.Reader, typ byte, name string) (int64, error) {
	if typ != thrift.TypeI64 {
		return 0, fmt.Errorf("%s has wire type %d", name, typ)
	}
	return r.ReadI64()
}

func decodeStatistics(r *thrift.Reader) (*Statistics, error) {
	s := &Statistics{}
	var legacyMin, legacyMax []byte

	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return nil, err
		}
		if typ == thrift.TypeStop {
			break
		}

		switch id {
		case 1: // max (deprecated)
			if legacyMax, err = readBinaryField(r, typ, "max"); err != nil {
				return nil, err
			}
		case 2: // min (deprecated)
			if legacyMin, err = readBinaryField(r, typ, "min"); err != nil {
				return nil, err
			}
		case 3: // null_count
			if s.NullCount, err = readI64Field(r, typ, "null_count"); err != nil {
				return nil, err
			}
			s.HasNullCount = true
		case 4: // distinct_count
			if s.DistinctCount, err = readI64Field(r, typ, "distinct_count"); err != nil {
				return nil, err
			}
			s.HasDistinctCount = true
		case 5: // max_value
			if s.Max, err = readBinaryField(r, typ, "max_value"); err != nil {
				return nil, err
			}
		case 6: // min_value
			if s.Min, err = readBinaryField(r, typ, "min_value"); err != nil {
				return nil, err
			}
		default:
			if err = r.Skip(typ); err != nil {
				return nil, err
			}
		}
		lastID = id
	}

	// The typed min_value/max_value fields win over the deprecated untyped
	// pair when both are present.
	if s.Max == nil {
		s.Max = legacyMax
	}
	if s.Min == nil {
		s.Min = legacyMin
	}
	return s, nil
}

func readBinaryField(r *thrift.Reader, typ byte, name string) ([]byte, error) {
	if typ != thrift.TypeBinary {
		return nil, fmt.Errorf("%s has wire type %d", name, typ)
	}
	return r.ReadBytes()
}

func decodeKeyValueList(r *thrift.Reader) (map[string]string, error) {
	size, elemType, err := r.ReadListHeader()
	if err != nil {
		return nil, err
	}
	if elemType != thrift.TypeStruct {
		return nil, fmt.Errorf("key_value elements have wire type %d", elemType)
	}
	if err := checkListSize(r, size, "key_value_metadata"); err != nil {
		return nil, err
	}

	kv := make(map[string]string, size)
	for i := 0; i < size; i++ {
		var key, value string
		var lastID int16
		for {
			id, typ, err := r.ReadFieldHeader(lastID)
			if err != nil {
				return nil, err
			}
			if typ == thrift.TypeStop {
				break
			}
			switch id {
			case 1:
				if key, err = r.ReadString(); err != nil {
					return nil, err
				}
			case 2:
				if value, err = r.ReadString(); err != nil {
					return nil, err
				}
			default:
				if err = r.Skip(typ); err != nil {
					return nil, err
				}
			}
			lastID = id
		}
		kv[key] = value
	}
	return kv, nil
}
