// Command dailyagent writes "The Daily Agent", a newspaper researched and
// written by language models.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
