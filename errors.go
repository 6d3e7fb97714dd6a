package rugo

import "errors"

// Structural errors abort a metadata parse; nothing about the file is usable
// after one of these.
var (
	ErrBufferTooSmall      = errors.New("rugo: buffer too small to hold a parquet footer")
	ErrNotAParquetFile     = errors.New("rugo: missing PAR1 magic trailer")
	ErrFooterLengthInvalid = errors.New("rugo: footer length exceeds the file size")
)

// Soft errors mark a single column chunk as undecodable; sibling columns are
// unaffected. They surface through DecodedColumn.Err.
var (
	ErrOutOfBounds              = errors.New("rugo: column chunk lies outside the buffer")
	ErrNotADataPage             = errors.New("rugo: expected a data page")
	ErrUnsupportedCodec         = errors.New("rugo: unsupported compression codec")
	ErrUnsupportedEncoding      = errors.New("rugo: unsupported value encoding")
	ErrUnsupportedType          = errors.New("rugo: unsupported physical type")
	ErrDecompressedSizeMismatch = errors.New("rugo: decompressed size does not match the page header")
	ErrDictionaryMissing        = errors.New("rugo: data page requires a dictionary but the chunk has none")
	ErrInvalidDictionaryIndex   = errors.New("rugo: dictionary index out of range")
	ErrValueCountMismatch       = errors.New("rugo: decoded value count does not match the declared count")
	ErrColumnNotFound           = errors.New("rugo: column not present in row group")
)

// MetadataError tags a structural parse failure with the stage that produced
// it: "footer", "schema", "row groups", or "column metadata".
type MetadataError struct {
	Stage string
	Err   error
}

func (e *MetadataError) Error() string {
	return "rugo: parsing " + e.Stage + ": " + e.Err.Error()
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

func metadataError(stage string, err error) error {
	if err == nil {
		return nil
	}
	var m *MetadataError
	if errors.As(err, &m) {
		return err
	}
	return &MetadataError{Stage: stage, Err: err}
}
