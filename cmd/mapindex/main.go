package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	gs := newGlobalState(context.Background())
	if err := newRootCommand(gs).ExecuteContext(gs.ctx); err != nil {
		if gs.logger != nil {
			gs.logger.Error(err)
		} else {
			fmt.Fprintln(gs.stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
