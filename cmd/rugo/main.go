// Command rugo inspects parquet files: schema and footer statistics, column
// contents, bloom filter probes, and a decodability pre-check.
package main

import (
	"fmt"
	"os"
	"strings"

	color "github.com/logrusorgru/aurora/v3"
	"github.com/segmentio/cli"

	"github.com/mabel-dev/rugo/internal/debug"
)

func main() {
	cli.Exec(cli.CommandSet{
		"schema":    cli.Command(schemaCommand),
		"stats":     cli.Command(statsCommand),
		"cat":       cli.Command(catCommand),
		"bloom":     cli.Command(bloomCommand),
		"candecode": cli.Command(canDecodeCommand),
	})
}

func perrorf(format string, args ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, color.Red(format).String(), args...)
}

func pdebugf(format string, args ...interface{}) {
	debug.Format(color.Gray(12, format).String(), args...)
}
