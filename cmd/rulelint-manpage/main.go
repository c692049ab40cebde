// Command rulelint-manpage generates the rulelint man pages, one page per
// command, into the given directory (default "man").
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/rulelint/cmd/rulelint"
	"github.com/arthur-debert/rulelint/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	dir := "man"
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(stderr, "Error creating %s: %v\n", dir, err)
		return 1
	}

	rootCmd := rulelint.NewRootCmd()
	header := &doc.GenManHeader{
		Title:   "RULELINT",
		Section: "1",
		Source:  "rulelint " + version.Version,
		Manual:  "rulelint manual",
	}
	if err := doc.GenManTree(rootCmd, header, dir); err != nil {
		fmt.Fprintf(stderr, "Error generating man pages: %v\n", err)
		return 1
	}
	return 0
}
