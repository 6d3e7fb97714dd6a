package rugo

import (
	"strconv"
	"strings"

	"github.com/mabel-dev/rugo/format"
)

// canonicalName strips the synthetic path segments parquet's list encoding
// inserts, so chunk paths and schema paths compare equal: a leading "schema."
// and a trailing ".list.element" or ".list.item".
func canonicalName(name string) string {
	name = strings.TrimPrefix(name, "schema.")
	name = strings.TrimSuffix(name, ".list.element")
	name = strings.TrimSuffix(name, ".list.item")
	return name
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// leafTypeString renders the value type of a leaf element, preferring the
// LogicalType union over the deprecated converted type, with physical
// fallbacks for unannotated columns.
func leafTypeString(e *SchemaElement) string {
	if e.LogicalType != "" {
		return e.LogicalType
	}
	if e.HasConvertedType {
		if e.ConvertedType == format.Decimal && e.Precision > 0 {
			return "decimal(" + strconv.Itoa(int(e.Precision)) + "," + strconv.Itoa(int(e.Scale)) + ")"
		}
		if s := e.ConvertedType.LogicalString(); s != "" {
			return s
		}
	}
	switch e.Type {
	case format.Int96:
		// Int96 is only ever the legacy nanosecond timestamp layout.
		return "timestamp[ns]"
	case format.ByteArray:
		return "binary"
	case format.FixedLenByteArray:
		return "fixed_len_byte_array[" + strconv.Itoa(int(e.TypeLength)) + "]"
	default:
		return e.Type.String()
	}
}

func isListElement(e *SchemaElement) bool {
	if e.Leaf() {
		return false
	}
	return e.LogicalType == "array" || (e.HasConvertedType && e.ConvertedType == format.List)
}

// firstValueLeaf descends through the synthetic group wrappers of a list
// element to the leaf that carries the element values.
func firstValueLeaf(e *SchemaElement) *SchemaElement {
	for !e.Leaf() {
		e = e.Children[0]
	}
	return e
}

// flattenSchema produces the schema_columns view: one entry per top-level
// field, with struct fields additionally registering their nested leaves
// under dotted names since chunk paths use the same dotted form.
func flattenSchema(root *SchemaElement) []SchemaField {
	fields := make([]SchemaField, 0, len(root.Children))
	for _, child := range root.Children {
		fields = appendSchemaFields(fields, child, "")
	}
	return fields
}

func appendSchemaFields(fields []SchemaField, e *SchemaElement, prefix string) []SchemaField {
	name := canonicalName(joinPath(prefix, e.Name))
	nullable := e.RepetitionType != format.Required

	switch {
	case e.Leaf():
		fields = append(fields, SchemaField{
			Name:         name,
			PhysicalType: e.Type,
			TypeLength:   e.TypeLength,
			Type:         leafTypeString(e),
			Nullable:     nullable,
		})
	case isListElement(e):
		leaf := firstValueLeaf(e)
		fields = append(fields, SchemaField{
			Name:         name,
			PhysicalType: leaf.Type,
			TypeLength:   leaf.TypeLength,
			Type:         "array<" + leafTypeString(leaf) + ">",
			Nullable:     nullable,
		})
	default:
		// Structs surface as opaque json at their own path, and their
		// members are registered too so chunk paths still resolve.
		fields = append(fields, SchemaField{
			Name:     name,
			Type:     "json",
			Nullable: nullable,
		})
		for _, child := range e.Children {
			fields = appendSchemaFields(fields, child, joinPath(prefix, e.Name))
		}
	}
	return fields
}

// enrichColumnStats canonicalizes chunk names, propagates logical types from
// the schema, and derives the level bounds: flat columns never carry
// repetition levels, and definition levels exist only for nullable columns.
func enrichColumnStats(fs *FileStats) {
	byName := make(map[string]*SchemaField, len(fs.SchemaColumns))
	for i := range fs.SchemaColumns {
		byName[fs.SchemaColumns[i].Name] = &fs.SchemaColumns[i]
	}

	for g := range fs.RowGroups {
		columns := fs.RowGroups[g].Columns
		for i := range columns {
			col := &columns[i]
			col.Name = canonicalName(strings.Join(col.PathInSchema, "."))
			col.MaxRepetitionLevel = 0
			col.MaxDefinitionLevel = 1

			if field, ok := byName[col.Name]; ok {
				col.LogicalType = field.Type
				col.TypeLength = field.TypeLength
				if !field.Nullable {
					col.MaxDefinitionLevel = 0
				}
			}
		}
	}
}
