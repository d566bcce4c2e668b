package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Sunspark/MauroDataCollector/internal/cli"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(mauro.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(mauro.ExitCodeForError(err))
	}
}
