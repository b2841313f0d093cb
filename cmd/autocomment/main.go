// Command autocomment stamps a marker comment with the current time into
// files when they are saved.
package main

import (
	"context"
	"fmt"
	"os"
)

// Version is the release, set at build time with -ldflags.
var Version = "0.3.0"

func main() {
	root := newRootCmd(&rootOptions{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
