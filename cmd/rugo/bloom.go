package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/mabel-dev/rugo"
	"github.com/mabel-dev/rugo/format"
	"github.com/mabel-dev/rugo/internal/debug"
)

type bloomFlags struct {
	_        struct{} `help:"Probe a column's bloom filter for a value"`
	Column   string   `flag:"--column" help:"Column to probe"`
	RowGroup int      `flag:"--row-group" help:"Row group to probe" default:"0"`
	Debug    bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func bloomCommand(flags bloomFlags, path, value string) {
	debug.Toggle(flags.Debug)

	data, err := os.ReadFile(path)
	if err != nil {
		perrorf("could not open file: %s", err)
		return
	}
	fs, err := rugo.ReadMetadata(data, nil)
	if err != nil {
		perrorf("could not read metadata: %s", err)
		return
	}

	col := fs.Column(flags.RowGroup, flags.Column)
	if col == nil {
		perrorf("no column %q in row group %d", flags.Column, flags.RowGroup)
		return
	}
	if col.BloomFilterOffset < 0 {
		perrorf("column %q carries no bloom filter", flags.Column)
		return
	}
	pdebugf("filter at offset %d, length %d", col.BloomFilterOffset, col.BloomFilterLength)

	encoded, err := encodeProbeValue(col.PhysicalType, value)
	if err != nil {
		perrorf("%s", err)
		return
	}

	hit, err := rugo.TestBloomFilter(data, col.BloomFilterOffset, int64(col.BloomFilterLength), encoded)
	if err != nil {
		perrorf("could not probe filter: %s", err)
		return
	}
	if hit {
		fmt.Println("maybe present")
	} else {
		fmt.Println("absent")
	}
}

// encodeProbeValue plain-encodes a command line value the way the column's
// values are hashed.
func encodeProbeValue(typ format.Type, value string) ([]byte, error) {
	switch typ {
	case format.Int32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as int32: %w", value, err)
		}
		return binary.LittleEndian.AppendUint32(nil, uint32(v)), nil
	case format.Int64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as int64: %w", value, err)
		}
		return binary.LittleEndian.AppendUint64(nil, uint64(v)), nil
	case format.Float:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as float: %w", value, err)
		}
		return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(v))), nil
	case format.Double:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as double: %w", value, err)
		}
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)), nil
	case format.ByteArray, format.FixedLenByteArray:
		return []byte(value), nil
	default:
		return nil, fmt.Errorf("cannot probe %s columns", typ)
	}
}
