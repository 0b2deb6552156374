// Command ecomrevenue loads the e-commerce CSV datasets into a relational
// store and produces the customer revenue report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	_ "github.com/JonMunkholm/ecomrevenue/internal/core/tables" // Register all entities
	_ "github.com/JonMunkholm/ecomrevenue/internal/store/duckdb"
	_ "github.com/JonMunkholm/ecomrevenue/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if msg := core.FormatUserError(err); msg != "" && core.IsUserFacing(err) {
			fmt.Fprintf(os.Stderr, "%s\n", msg)
		}
	}
	os.Exit(core.ExitCode(err))
}
