package main

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/mabel-dev/rugo"
	"github.com/mabel-dev/rugo/internal/debug"
)

type schemaFlags struct {
	_     struct{} `help:"Print the flattened schema of a parquet file"`
	Debug bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func schemaCommand(flags schemaFlags, path string) {
	debug.Toggle(flags.Debug)

	fs, err := rugo.ReadMetadataFile(path, &rugo.MetadataOptions{SchemaOnly: true})
	if err != nil {
		perrorf("could not read metadata: %s", err)
		return
	}
	pdebugf("%d schema columns, %d row groups declared", len(fs.SchemaColumns), fs.NumRowGroups)

	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader([]string{"column", "type", "physical", "nullable"})
	for i := range fs.SchemaColumns {
		field := &fs.SchemaColumns[i]
		physical := field.PhysicalType.String()
		if field.PhysicalType == 0 && field.Type == "json" {
			physical = "group"
		}
		w.Append([]string{
			field.Name,
			field.Type,
			physical,
			strconv.FormatBool(field.Nullable),
		})
	}
	w.Render()
}
