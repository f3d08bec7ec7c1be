package main

import (
	"os"

	"github.com/voxbridge/voxbridge/internal/cli"
)

func main() {
	os.Exit(cli.Run(cli.NewTTSCmd()))
}
