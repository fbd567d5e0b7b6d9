package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errStorageUnavailable) {
			fmt.Fprintln(os.Stderr, "modelhub:", err)
		}
		os.Exit(1)
	}
}
