package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/visrec-datasets/internal/catalog"
	"github.com/handiism/visrec-datasets/internal/config"
	ioutils "github.com/handiism/visrec-datasets/internal/io"
	"github.com/handiism/visrec-datasets/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to settings file")
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cat := catalog.Default()
	if settings.PresetFile != "" {
		var err error
		cat, err = catalog.LoadFile(settings.PresetFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading presets: %v\n", err)
			os.Exit(1)
		}
	}

	err := tui.Run(settings, cat)
	ioutils.RemovePending()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
