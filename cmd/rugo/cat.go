package main

import (
	"bufio"
	"encoding/base64"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mabel-dev/rugo"
	"github.com/mabel-dev/rugo/internal/debug"
)

type catFlags struct {
	_       struct{} `help:"Dump the content of a parquet file to stdout"`
	Columns string   `flag:"--columns" help:"Comma-separated list of columns to read, all when omitted" default:"-"`
	Debug   bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func catCommand(flags catFlags, path string) {
	debug.Toggle(flags.Debug)

	data, err := os.ReadFile(path)
	if err != nil {
		perrorf("could not open file: %s", err)
		return
	}

	var columns []string
	if flags.Columns != "" {
		columns = strings.Split(flags.Columns, ",")
	}

	table, err := rugo.ReadTable(data, columns)
	if err != nil {
		perrorf("could not read file: %s", err)
		return
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for g := range table.RowGroups {
		group := table.RowGroups[g]
		pdebugf("row group %d: %d columns", g, len(group))

		rows := 0
		for i := range group {
			if !group[i].Success {
				perrorf("column %s: %s", group[i].Name, group[i].Err)
				continue
			}
			if n := group[i].Len(); n > rows {
				rows = n
			}
		}

		for row := 0; row < rows; row++ {
			for i := range group {
				col := &group[i]
				if !col.Success || row >= col.Len() {
					continue
				}
				w.WriteString(col.Name)
				w.WriteString(" = ")
				w.WriteString(renderValue(col, row))
				w.WriteByte('\n')
			}
			w.WriteByte('\n')
		}
	}
}

func renderValue(col *rugo.DecodedColumn, row int) string {
	if col.Nulls[row] {
		return "null"
	}
	switch col.Kind {
	case rugo.KindInt32:
		return strconv.FormatInt(int64(col.Int32[row]), 10)
	case rugo.KindInt64:
		return strconv.FormatInt(col.Int64[row], 10)
	case rugo.KindFloat32:
		return strconv.FormatFloat(float64(col.Float32[row]), 'g', -1, 32)
	case rugo.KindFloat64:
		return strconv.FormatFloat(col.Float64[row], 'g', -1, 64)
	case rugo.KindBoolean:
		return strconv.FormatBool(col.Boolean[row])
	default:
		b := col.ByteArray[row]
		if utf8.Valid(b) {
			return string(b)
		}
		return base64.StdEncoding.EncodeToString(b)
	}
}
