package rugo

import "github.com/mabel-dev/rugo/format"

var decodableCodecs = map[format.CompressionCodec]bool{
	format.Uncompressed: true,
	format.Snappy:       true,
	format.Zstd:         true,
}

var decodableTypes = map[format.Type]bool{
	format.Boolean:   true,
	format.Int32:     true,
	format.Int64:     true,
	format.Float:     true,
	format.Double:    true,
	format.ByteArray: true,
}

var decodableEncodings = map[format.Encoding]bool{
	format.Plain:             true,
	format.PlainDictionary:   true,
	format.RLEDictionary:     true,
	format.DeltaBinaryPacked: true,
	format.DeltaByteArray:    true,
}

// CanDecode reports whether ReadTable can decode every column of the file:
// each chunk must use a supported codec and physical type and list at least
// one supported encoding. It inspects metadata only and never touches page
// bytes, so callers can reject files before paying any decode cost.
func CanDecode(data []byte) bool {
	meta, err := ReadMetadata(data, &MetadataOptions{SkipStatistics: true})
	if err != nil {
		return false
	}

	for g := range meta.RowGroups {
		for i := range meta.RowGroups[g].Columns {
			col := &meta.RowGroups[g].Columns[i]
			if !decodableCodecs[col.Codec] || !decodableTypes[col.PhysicalType] {
				return false
			}
			supported := false
			for _, e := range col.Encodings {
				if decodableEncodings[e] {
					supported = true
					break
				}
			}
			if !supported {
				return false
			}
		}
	}
	return true
}
