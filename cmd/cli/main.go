package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/cmsauth/internal/buildinfo"
	"github.com/dmitrijs2005/cmsauth/internal/client/api"
	"github.com/dmitrijs2005/cmsauth/internal/client/cli"
	"github.com/dmitrijs2005/cmsauth/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if len(args) == 1 && args[0] == "version" {
		buildinfo.PrintBuildData(os.Stdout)
		return
	}

	client := api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	app := cli.NewApp(cfg, client, os.Stdin, os.Stdout)

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
