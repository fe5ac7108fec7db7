// lcpnet builds least-cost path networks over large cost rasters.
package main

import (
	"fmt"
	"os"

	"github.com/lcpnet/lcpnet/internal/logger"
)

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
