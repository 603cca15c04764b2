// Command recipectl runs administrative tasks against the recipe database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
