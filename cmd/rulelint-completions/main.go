// Command rulelint-completions writes the shell completion scripts for
// rulelint into the given directory (default "completions").
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/cmd/rulelint"
)

// scripts maps each completion file to its generator
var scripts = map[string]func(root *cobra.Command, w io.Writer) error{
	"rulelint.bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"_rulelint":     func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"rulelint.fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"rulelint.ps1":  func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	dir := "completions"
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(stderr, "Error creating %s: %v\n", dir, err)
		return 1
	}

	rootCmd := rulelint.NewRootCmd()
	for name, gen := range scripts {
		if err := writeScript(filepath.Join(dir, name), rootCmd, gen); err != nil {
			fmt.Fprintf(stderr, "Error generating %s: %v\n", name, err)
			return 1
		}
	}
	return 0
}

func writeScript(path string, root *cobra.Command, gen func(*cobra.Command, io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return gen(root, f)
}
