package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/calgrid/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Configuration is loaded once flags are parsed so --config applies.
	app := ui.NewApp(nil)
	return app.Execute()
}
