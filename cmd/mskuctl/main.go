// Command mskuctl resolves marketplace SKUs offline against a mapping file,
// without a running service or database.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	if err := New(logger).Execute(); err != nil {
		os.Exit(1)
	}
}
