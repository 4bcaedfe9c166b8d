// Command originals is a scriptable batch CLI over the SDK: it creates
// assets from local files, migrates them across layers, and inspects their
// provenance, using the same configuration precedence (flags, environment,
// config file) as a library caller driving the SDK directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
