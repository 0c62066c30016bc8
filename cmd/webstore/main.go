// Command webstore inspects and edits a configured webstore backend.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
