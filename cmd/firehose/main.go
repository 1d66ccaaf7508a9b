package main

import (
	"os"

	"github.com/lixenwraith/firehose/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
