package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"

	"github.com/arthur-debert/rulelint/cmd/rulelint"
	"github.com/arthur-debert/rulelint/pkg/ui/terminal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := rulelint.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !rulelint.IsSilent(err) {
		// Print the error in red when stderr is a terminal
		r, rerr := terminal.New(os.Stderr, termenv.NewOutput(os.Stderr).EnvColorProfile())
		if rerr != nil || r.RenderError(err) != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(rulelint.ExitCode(err))
}
