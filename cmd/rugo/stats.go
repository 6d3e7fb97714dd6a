package main

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"

	"github.com/mabel-dev/rugo"
	"github.com/mabel-dev/rugo/format"
	"github.com/mabel-dev/rugo/internal/debug"
)

type statsFlags struct {
	_     struct{} `help:"Print footer statistics of a parquet file"`
	Debug bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func statsCommand(flags statsFlags, path string) {
	debug.Toggle(flags.Debug)

	fs, err := rugo.ReadMetadataFile(path, nil)
	if err != nil {
		perrorf("could not read metadata: %s", err)
		return
	}

	fmt.Printf("version: %d\n", fs.Version)
	fmt.Printf("rows: %d\n", fs.NumRows)
	fmt.Printf("row groups: %d\n", fs.NumRowGroups)
	if fs.CreatedBy != "" {
		fmt.Printf("created by: %s\n", fs.CreatedBy)
	}

	for g := range fs.RowGroups {
		rg := &fs.RowGroups[g]
		fmt.Printf("\nrow group %d: %d rows, %d bytes\n", g, rg.NumRows, rg.TotalByteSize)

		w := tablewriter.NewWriter(os.Stdout)
		w.SetHeader([]string{"column", "type", "codec", "values", "compressed", "min", "max", "nulls"})
		for i := range rg.Columns {
			col := &rg.Columns[i]
			min, max, nulls := "", "", ""
			if s := col.Statistics; s != nil {
				min = formatStatValue(col.PhysicalType, s.Min)
				max = formatStatValue(col.PhysicalType, s.Max)
				if s.HasNullCount {
					nulls = strconv.FormatInt(s.NullCount, 10)
				}
			}
			w.Append([]string{
				col.Name,
				col.PhysicalType.String(),
				col.Codec.String(),
				strconv.FormatInt(col.NumValues, 10),
				strconv.FormatInt(col.TotalCompressedSize, 10),
				min,
				max,
				nulls,
			})
		}
		w.Render()
	}
}

// formatStatValue renders a plain-encoded statistics value for display.
// Byte arrays print as text when valid UTF-8 and base64 otherwise, matching
// what parquet-tools does.
func formatStatValue(typ format.Type, value []byte) string {
	if value == nil {
		return ""
	}
	switch typ {
	case format.Int32:
		if len(value) == 4 {
			return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(value))), 10)
		}
	case format.Int64:
		if len(value) == 8 {
			return strconv.FormatInt(int64(binary.LittleEndian.Uint64(value)), 10)
		}
	case format.Float:
		if len(value) == 4 {
			return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(value))), 'g', -1, 32)
		}
	case format.Double:
		if len(value) == 8 {
			return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(value)), 'g', -1, 64)
		}
	case format.Boolean:
		if len(value) == 1 {
			return strconv.FormatBool(value[0] != 0)
		}
	}
	if utf8.Valid(value) {
		return string(value)
	}
	return base64.StdEncoding.EncodeToString(value)
}
