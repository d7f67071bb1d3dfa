package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nygula/Taoda/cmd/taoda/cmd"
)

// 构建时通过 -ldflags 注入
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand(version).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
