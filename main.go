// main is the entry point for the mfi CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fortify-index/mfi/cmd"
	"github.com/fortify-index/mfi/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		iocache.CloseCaching()
		os.Exit(1)
	}
}
