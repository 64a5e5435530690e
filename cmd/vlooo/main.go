package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Interrupted runs already printed resume guidance.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "vlooo: %v\n", err)
		}
		os.Exit(1)
	}
}
