package rugo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mabel-dev/rugo/format"
)

func TestFooterValidation(t *testing.T) {
	if _, err := ReadMetadata([]byte("PAR"), nil); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("short buffer: got %v, want ErrBufferTooSmall", err)
	}
	if _, err := ReadMetadata([]byte("0123456789abcdef"), nil); !errors.Is(err, ErrNotAParquetFile) {
		t.Errorf("bad magic: got %v, want ErrNotAParquetFile", err)
	}

	// Valid trailer claiming a footer larger than the file.
	data := binary.LittleEndian.AppendUint32([]byte("PAR1"), 1000)
	data = append(data, "PAR1"...)
	if _, err := ReadMetadata(data, nil); !errors.Is(err, ErrFooterLengthInvalid) {
		t.Errorf("oversized footer: got %v, want ErrFooterLengthInvalid", err)
	}
}

func TestReadMetadataCorruptFooter(t *testing.T) {
	footer := []byte{0x19, 0xff} // schema list of garbage
	data := append([]byte("PAR1"), footer...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(footer)))
	data = append(data, "PAR1"...)

	_, err := ReadMetadata(data, nil)
	if err == nil {
		t.Fatal("expected an error parsing a corrupt footer")
	}
	var m *MetadataError
	if !errors.As(err, &m) {
		t.Fatalf("got %T, want *MetadataError", err)
	}
}

func TestReadMetadataHostileListSize(t *testing.T) {
	// A schema list declaring a billion elements in a footer a few bytes long
	// must be rejected before any per-element allocation.
	var footer []byte
	w := newStructWriter(&footer)
	w.i32(1, 1)
	w.listHeader(2, 12, 1<<30)

	data := append([]byte("PAR1"), footer...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(footer)))
	data = append(data, "PAR1"...)

	_, err := ReadMetadata(data, nil)
	if err == nil {
		t.Fatal("expected an error for an oversized schema list")
	}
	var m *MetadataError
	if !errors.As(err, &m) {
		t.Fatalf("got %T, want *MetadataError", err)
	}
}

func TestReadMetadata(t *testing.T) {
	file := buildFile(standardColumns(), 5)

	fs, err := ReadMetadata(file, nil)
	if err != nil {
		t.Fatal(err)
	}

	if fs.Version != 1 {
		t.Errorf("version: got %d", fs.Version)
	}
	if fs.NumRows != 5 {
		t.Errorf("num rows: got %d", fs.NumRows)
	}
	if fs.CreatedBy != "rugo test writer" {
		t.Errorf("created_by: got %q", fs.CreatedBy)
	}
	if len(fs.SchemaColumns) != 5 {
		t.Fatalf("schema columns: got %d", len(fs.SchemaColumns))
	}

	wantTypes := map[string]string{
		"id":    "int64",
		"name":  "binary",
		"score": "float64",
		"flag":  "boolean",
		"steps": "int32",
	}
	for _, field := range fs.SchemaColumns {
		if want := wantTypes[field.Name]; field.Type != want {
			t.Errorf("column %s: type %q, want %q", field.Name, field.Type, want)
		}
	}

	if len(fs.RowGroups) != 1 || fs.NumRowGroups != 1 {
		t.Fatalf("row groups: got %d (declared %d)", len(fs.RowGroups), fs.NumRowGroups)
	}
	rg := fs.RowGroups[0]
	if rg.NumRows != 5 {
		t.Errorf("row group num rows: got %d", rg.NumRows)
	}
	if len(rg.Columns) != 5 {
		t.Fatalf("row group columns: got %d", len(rg.Columns))
	}

	id := fs.Column(0, "id")
	if id == nil {
		t.Fatal("column id not found")
	}
	if id.PhysicalType != format.Int64 || id.Codec != format.Uncompressed {
		t.Errorf("id: type %s codec %s", id.PhysicalType, id.Codec)
	}
	if id.MaxDefinitionLevel != 0 {
		t.Errorf("id is REQUIRED, max definition level %d", id.MaxDefinitionLevel)
	}

	name := fs.Column(0, "name")
	if name == nil {
		t.Fatal("column name not found")
	}
	if name.MaxDefinitionLevel != 1 {
		t.Errorf("name is OPTIONAL, max definition level %d", name.MaxDefinitionLevel)
	}
	if name.DictionaryPageOffset < 0 || name.DictionaryPageOffset >= name.DataPageOffset {
		t.Errorf("name dictionary offset %d, data offset %d", name.DictionaryPageOffset, name.DataPageOffset)
	}
}

func TestReadMetadataStatistics(t *testing.T) {
	file := buildFile(standardColumns(), 5)

	fs, err := ReadMetadata(file, nil)
	if err != nil {
		t.Fatal(err)
	}

	id := fs.Column(0, "id")
	if id.Statistics == nil {
		t.Fatal("id carries no statistics")
	}
	// The typed min_value/max_value pair must win over the legacy fields.
	if !bytes.Equal(id.Statistics.Min, plainInt64([]int64{1})) {
		t.Errorf("min: got %x", id.Statistics.Min)
	}
	if !bytes.Equal(id.Statistics.Max, plainInt64([]int64{5})) {
		t.Errorf("max: got %x", id.Statistics.Max)
	}
	if !id.Statistics.HasNullCount || id.Statistics.NullCount != 0 {
		t.Errorf("null count: got %d (set=%v)", id.Statistics.NullCount, id.Statistics.HasNullCount)
	}
}

func TestReadMetadataSchemaOnly(t *testing.T) {
	file := buildFile(standardColumns(), 5)

	fs, err := ReadMetadata(file, &MetadataOptions{SchemaOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(fs.RowGroups) != 0 {
		t.Errorf("schema-only parse produced %d row groups", len(fs.RowGroups))
	}
	if fs.NumRowGroups != 1 {
		t.Errorf("declared row group count lost: got %d", fs.NumRowGroups)
	}
	if len(fs.SchemaColumns) != 5 {
		t.Errorf("schema columns: got %d", len(fs.SchemaColumns))
	}
	// created_by follows row_groups in the footer; skipping must leave the
	// cursor positioned to read it.
	if fs.CreatedBy != "rugo test writer" {
		t.Errorf("created_by: got %q", fs.CreatedBy)
	}
}

func TestReadMetadataSkipStatistics(t *testing.T) {
	file := buildFile(standardColumns(), 5)

	fs, err := ReadMetadata(file, &MetadataOptions{SkipStatistics: true})
	if err != nil {
		t.Fatal(err)
	}
	id := fs.Column(0, "id")
	if id.Statistics != nil {
		t.Error("statistics parsed despite SkipStatistics")
	}
	// Fields after the skipped statistics struct must still parse.
	if id.DataPageOffset <= 0 {
		t.Errorf("data page offset lost: %d", id.DataPageOffset)
	}
}

func TestReadMetadataMaxRowGroups(t *testing.T) {
	intColumn := func(values []int64) []fixtureColumn {
		return []fixtureColumn{{
			name:     "id",
			typ:      format.Int64,
			encoding: format.Plain,
			codec:    format.Uncompressed,
			values:   plainInt64(values),
			count:    len(values),
		}}
	}
	file := buildFileGroups(
		[][]fixtureColumn{intColumn([]int64{1, 2, 3}), intColumn([]int64{4, 5})},
		[]int64{3, 2},
	)

	fs, err := ReadMetadata(file, &MetadataOptions{MaxRowGroups: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(fs.RowGroups) != 1 {
		t.Errorf("parsed %d row groups, want 1", len(fs.RowGroups))
	}
	if fs.NumRowGroups != 2 {
		t.Errorf("declared row group count: got %d, want 2", fs.NumRowGroups)
	}
	if fs.RowGroups[0].NumRows != 3 {
		t.Errorf("row group 0 num rows: got %d", fs.RowGroups[0].NumRows)
	}
	// The skipped second group must not desynchronize the cursor.
	if fs.CreatedBy != "rugo test writer" {
		t.Errorf("created_by: got %q", fs.CreatedBy)
	}
}

func TestSchemaFlattening(t *testing.T) {
	// root
	//   id      int64 REQUIRED
	//   tags    OPTIONAL group (LIST)
	//     list    REPEATED group
	//       element byte_array (UTF8)
	//   user    OPTIONAL group
	//     name    byte_array (UTF8)
	//     age     int32
	var b []byte
	w := newStructWriter(&b)
	w.i32(1, 1)
	w.listHeader(2, 12, 8)

	root := newStructWriter(&b)
	root.binary(4, []byte("schema"))
	root.i32(5, 3)
	root.end()

	tagsElem := func() {
		e := newStructWriter(&b)
		e.i32(3, int32(format.Optional))
		e.binary(4, []byte("tags"))
		e.i32(5, 1)
		e.i32(6, int32(format.List))
		e.end()

		list := newStructWriter(&b)
		list.i32(3, int32(format.Repeated))
		list.binary(4, []byte("list"))
		list.i32(5, 1)
		list.end()

		elem := newStructWriter(&b)
		elem.i32(1, int32(format.ByteArray))
		elem.i32(3, int32(format.Optional))
		elem.binary(4, []byte("element"))
		elem.i32(6, int32(format.UTF8))
		elem.end()
	}

	idElem := newStructWriter(&b)
	idElem.i32(1, int32(format.Int64))
	idElem.i32(3, int32(format.Required))
	idElem.binary(4, []byte("id"))
	idElem.end()

	tagsElem()

	user := newStructWriter(&b)
	user.i32(3, int32(format.Optional))
	user.binary(4, []byte("user"))
	user.i32(5, 2)
	user.end()

	uname := newStructWriter(&b)
	uname.i32(1, int32(format.ByteArray))
	uname.i32(3, int32(format.Optional))
	uname.binary(4, []byte("name"))
	uname.i32(6, int32(format.UTF8))
	uname.end()

	uage := newStructWriter(&b)
	uage.i32(1, int32(format.Int32))
	uage.i32(3, int32(format.Required))
	uage.binary(4, []byte("age"))
	uage.end()

	w.i64(3, 0)
	w.end()

	file := append([]byte("PAR1"), b...)
	file = binary.LittleEndian.AppendUint32(file, uint32(len(b)))
	file = append(file, "PAR1"...)

	fs, err := ReadMetadata(file, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"id":        "int64",
		"tags":      "array<varchar>",
		"user":      "json",
		"user.name": "varchar",
		"user.age":  "int32",
	}
	if len(fs.SchemaColumns) != len(want) {
		t.Fatalf("got %d schema columns: %+v", len(fs.SchemaColumns), fs.SchemaColumns)
	}
	for _, field := range fs.SchemaColumns {
		if w, ok := want[field.Name]; !ok || field.Type != w {
			t.Errorf("column %q: type %q, want %q", field.Name, field.Type, w)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct{ in, out string }{
		{"id", "id"},
		{"schema.id", "id"},
		{"tags.list.element", "tags"},
		{"tags.list.item", "tags"},
		{"schema.tags.list.element", "tags"},
		{"user.name", "user.name"},
	}
	for _, test := range tests {
		if got := canonicalName(test.in); got != test.out {
			t.Errorf("canonicalName(%q) = %q, want %q", test.in, got, test.out)
		}
	}
}
