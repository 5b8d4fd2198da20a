package main

import (
	"os"

	"github.com/nikhilbhutani/podcastsummarizer/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.DefaultFactory).Execute(); err != nil {
		os.Exit(1)
	}
}
