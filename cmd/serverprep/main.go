package main

import (
	"os"

	"github.com/tpodg/serverprep/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
