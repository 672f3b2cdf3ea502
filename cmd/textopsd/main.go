// Command textopsd serves memoized rendering and visual diffs over HTTP.
package main

import (
	"os"

	"github.com/jonwraymond/textops/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
