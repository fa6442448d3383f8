package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/sdk/perf"
)

func main() {
	bindVar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := perf.RunPProf(func() error { return run(ctx, cfg, flagArgs(), os.Stdout) }, cfg.pprofmode)
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if errs.IsWarn(err) {
		os.Exit(2)
	}
	os.Exit(1)
}
