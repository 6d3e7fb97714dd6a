package main

import (
	"fmt"
	"os"

	"github.com/mabel-dev/rugo"
	"github.com/mabel-dev/rugo/internal/debug"
)

type canDecodeFlags struct {
	_     struct{} `help:"Report whether every column of a parquet file is decodable"`
	Debug bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func canDecodeCommand(flags canDecodeFlags, path string) int {
	debug.Toggle(flags.Debug)

	data, err := os.ReadFile(path)
	if err != nil {
		perrorf("could not open file: %s", err)
		return 1
	}
	if !rugo.CanDecode(data) {
		fmt.Println("no")
		return 1
	}
	fmt.Println("yes")
	return 0
}
