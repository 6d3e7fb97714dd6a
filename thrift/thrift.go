// Package thrift implements a minimal reader for the Thrift Compact Protocol,
// which parquet uses for its file footer, page headers, and bloom filter
// headers.
//
// The reader operates on an immutable byte slice; every read is bounds
// checked so that length fields taken from untrusted input can never cause
// out-of-range accesses. Decoded strings and byte slices alias the input
// buffer, so the buffer must remain valid for the lifetime of the decoded
// values.
package thrift

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Wire types of the compact protocol.
const (
	TypeStop   = 0
	TypeTrue   = 1
	TypeFalse  = 2
	TypeI8     = 3
	TypeI16    = 4
	TypeI32    = 5
	TypeI64    = 6
	TypeDouble = 7
	TypeBinary = 8
	TypeList   = 9
	TypeSet    = 10
	TypeMap    = 11
	TypeStruct = 12
)

var (
	ErrEndOfBuffer    = errors.New("thrift: read past the end of the buffer")
	ErrVarintTooLong  = errors.New("thrift: varint longer than 10 bytes")
	ErrVarintOverflow = errors.New("thrift: varint overflows 64 bits")
	ErrInvalidLength  = errors.New("thrift: length prefix exceeds remaining buffer")
)

// Reader is a cursor over a compact protocol byte stream.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a reader positioned at the beginning of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of bytes left to read.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// ReadByte returns the next byte of the stream.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrEndOfBuffer
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return ErrEndOfBuffer
	}
	r.pos += n
	return nil
}

// ReadUvarint reads an unsigned LEB128 varint of at most 10 bytes.
func (r *Reader) ReadUvarint() (uint64, error) {
	var x uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= 10 {
			return 0, ErrVarintTooLong
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			if shift == 63 && b > 1 {
				return 0, ErrVarintOverflow
			}
			return x | uint64(b)<<shift, nil
		}
		if shift >= 63 {
			return 0, ErrVarintOverflow
		}
		x |= uint64(b&0x7f) << shift
		shift += 7
	}
}

// ReadVarint reads a zigzag encoded signed varint.
func (r *Reader) ReadVarint() (int64, error) {
	u, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// ReadI32 reads a zigzag encoded 32 bit integer.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadVarint()
	return int32(v), err
}

// ReadI64 reads a zigzag encoded 64 bit integer.
func (r *Reader) ReadI64() (int64, error) {
	return r.ReadVarint()
}

// ReadDouble reads a little-endian 64 bit float.
func (r *Reader) ReadDouble() (float64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrEndOfBuffer
	}
	bits := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// ReadBool interprets a bool carried by the field wire type. Bool fields
// encode their value in the type nibble; bool list elements carry one byte.
func (r *Reader) ReadBool(typ byte) (bool, error) {
	switch typ {
	case TypeTrue:
		return true, nil
	case TypeFalse:
		return false, nil
	default:
		b, err := r.ReadByte()
		return b != 0, err
	}
}

// ReadBytes reads a length-prefixed byte string. The returned slice aliases
// the underlying buffer.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(r.data)-r.pos) {
		return nil, ErrInvalidLength
	}
	if n == 0 {
		return nil, nil
	}
	b := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	return string(b), err
}

// ReadFieldHeader reads the next field header of a struct. lastID is the id
// of the previous field in the same struct; the returned id accounts for the
// compact protocol's delta encoding. A TypeStop header terminates the struct
// and leaves lastID untouched, so the caller must only advance its carried id
// for non-stop fields.
func (r *Reader) ReadFieldHeader(lastID int16) (id int16, typ byte, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	typ = b & 0x0f
	if typ == TypeStop {
		return 0, TypeStop, nil
	}

	if delta := b >> 4; delta != 0 {
		id = lastID + int16(delta)
	} else {
		v, err := r.ReadVarint()
		if err != nil {
			return 0, 0, err
		}
		id = int16(v)
	}
	return id, typ, nil
}

// ReadListHeader reads a list or set header, returning the element count and
// element wire type.
func (r *Reader) ReadListHeader() (size int, typ byte, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	typ = b & 0x0f
	size = int(b >> 4)
	if size == 0x0f {
		n, err := r.ReadUvarint()
		if err != nil {
			return 0, 0, err
		}
		size = int(n)
	}
	return size, typ, nil
}

// ReadMapHeader reads a map header, returning the entry count and the key and
// value wire types. Empty maps carry no type byte.
func (r *Reader) ReadMapHeader() (size int, keyType, valueType byte, err error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return 0, 0, 0, err
	}
	if n == 0 {
		return 0, 0, 0, nil
	}
	kv, err := r.ReadByte()
	if err != nil {
		return 0, 0, 0, err
	}
	return int(n), kv >> 4, kv & 0x0f, nil
}

// Skip consumes and discards a value of the given wire type, recursing into
// nested structs, lists, sets, and maps. It is how unknown fields are passed
// over without desynchronizing the cursor.
func (r *Reader) Skip(typ byte) error {
	switch typ {
	case TypeStop, TypeTrue, TypeFalse:
		return nil
	case TypeI8:
		return r.skip(1)
	case TypeI16, TypeI32, TypeI64:
		_, err := r.ReadVarint()
		return err
	case TypeDouble:
		return r.skip(8)
	case TypeBinary:
		n, err := r.ReadUvarint()
		if err != nil {
			return err
		}
		if n > uint64(len(r.data)-r.pos) {
			return ErrInvalidLength
		}
		return r.skip(int(n))
	case TypeList, TypeSet:
		size, elemType, err := r.ReadListHeader()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := r.skipElement(elemType); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		size, keyType, valueType, err := r.ReadMapHeader()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := r.skipElement(keyType); err != nil {
				return err
			}
			if err := r.skipElement(valueType); err != nil {
				return err
			}
		}
		return nil
	case TypeStruct:
		return r.SkipStruct()
	default:
		return fmt.Errorf("thrift: cannot skip unknown wire type %d", typ)
	}
}

// Bool elements of lists and maps occupy one byte, unlike bool fields whose
// value lives in the type nibble.
func (r *Reader) skipElement(typ byte) error {
	if typ == TypeTrue || typ == TypeFalse {
		return r.skip(1)
	}
	return r.Skip(typ)
}

// SkipStruct consumes a struct, discarding all of its fields.
func (r *Reader) SkipStruct() error {
	var lastID int16
	for {
		id, typ, err := r.ReadFieldHeader(lastID)
		if err != nil {
			return err
		}
		if typ == TypeStop {
			return nil
		}
		if err := r.Skip(typ); err != nil {
			return err
		}
		lastID = id
	}
}
