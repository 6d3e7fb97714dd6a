// Package plain implements the PLAIN encoding, the simplest parquet value
// layout: fixed-width values are little-endian back to back, byte arrays
// carry a 4 byte length prefix, and booleans are bit-packed LSB first.
package plain

import (
	"encoding/binary"
	"errors"
	"math"
)

var ErrTruncated = errors.New("plain: encoded data shorter than the value count requires")

// Counts come from untrusted footers and page headers, so the bound checks
// divide instead of multiplying: len(data) < 4*count overflows for huge
// counts and would let them through to allocation.

// DecodeInt32 reads count little-endian 32 bit integers.
func DecodeInt32(data []byte, count int) ([]int32, error) {
	if count < 0 || count > len(data)/4 {
		return nil, ErrTruncated
	}
	values := make([]int32, count)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return values, nil
}

// DecodeInt64 reads count little-endian 64 bit integers.
func DecodeInt64(data []byte, count int) ([]int64, error) {
	if count < 0 || count > len(data)/8 {
		return nil, ErrTruncated
	}
	values := make([]int64, count)
	for i := range values {
		values[i] = int64(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return values, nil
}

// DecodeFloat reads count little-endian 32 bit floats.
func DecodeFloat(data []byte, count int) ([]float32, error) {
	if count < 0 || count > len(data)/4 {
		return nil, ErrTruncated
	}
	values := make([]float32, count)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return values, nil
}

// DecodeDouble reads count little-endian 64 bit floats.
func DecodeDouble(data []byte, count int) ([]float64, error) {
	if count < 0 || count > len(data)/8 {
		return nil, ErrTruncated
	}
	values := make([]float64, count)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return values, nil
}

// DecodeBoolean unpacks count booleans stored one per bit, LSB first within
// each byte.
func DecodeBoolean(data []byte, count int) ([]bool, error) {
	if count < 0 {
		return nil, ErrTruncated
	}
	needed := count / 8
	if count%8 != 0 {
		needed++
	}
	if len(data) < needed {
		return nil, ErrTruncated
	}
	values := make([]bool, count)
	for i := range values {
		values[i] = data[i/8]&(1<<(i%8)) != 0
	}
	return values, nil
}

// DecodeByteArray reads count length-prefixed byte strings. Each prefix is a
// 4 byte little-endian length. The returned slices alias data.
func DecodeByteArray(data []byte, count int) ([][]byte, error) {
	// Every value carries at least its 4 byte prefix.
	if count < 0 || count > len(data)/4 {
		return nil, ErrTruncated
	}
	values := make([][]byte, count)
	for i := range values {
		if len(data) < 4 {
			return nil, ErrTruncated
		}
		size := int(binary.LittleEndian.Uint32(data))
		data = data[4:]
		if size < 0 || size > len(data) {
			return nil, ErrTruncated
		}
		values[i] = data[:size:size]
		data = data[size:]
	}
	return values, nil
}

// DecodeFixedLenByteArray reads count byte strings of the given fixed size.
// The returned slices alias data.
func DecodeFixedLenByteArray(data []byte, size, count int) ([][]byte, error) {
	if size <= 0 || count < 0 || count > len(data)/size {
		return nil, ErrTruncated
	}
	values := make([][]byte, count)
	for i := range values {
		values[i] = data[size*i : size*(i+1) : size*(i+1)]
	}
	return values, nil
}
