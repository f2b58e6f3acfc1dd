package main

import (
	"fmt"
	"os"

	altupdater "github.com/thrawn01/alt-updater"
)

func main() {
	if err := altupdater.RunCmd(os.Args, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
