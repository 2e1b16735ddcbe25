// Command fbradar scrapes player stats pages and renders radar charts
// comparing players season by season.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("fbradar: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
