package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/moonmatch/internal/client/cli"
	"github.com/dmitrijs2005/moonmatch/internal/client/config"
	"github.com/dmitrijs2005/moonmatch/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// The REPL may be blocked on stdin; a second interrupt kills the process.
		<-ctx.Done()
		stop()
	}()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
