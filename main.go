package main

import (
	"flag"
	"fmt"
	"os"
	"pointsd/internal/di"
	"pointsd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to stderr")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "pointsd: %s\n", err)
		os.Exit(1)
	}
}
