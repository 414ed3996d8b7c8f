// recolor maps the colours used by an image onto a fixed palette while
// keeping distinct regions distinct.
package main

import (
	"os"

	"github.com/mmuldo/recolor/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
