package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talkincode/stockboard/config"
	"github.com/talkincode/stockboard/internal/adminapi"
	"github.com/talkincode/stockboard/internal/app"
	"github.com/talkincode/stockboard/internal/webserver"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var version = "develop"

func main() {
	cliApp := &cli.App{
		Name:    "stockboard",
		Usage:   "daily stock and profit tracking for small shops",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path",
				Value:   "/etc/stockboard.yml",
				EnvVars: []string{"STOCKBOARD_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "initdb",
				Usage: "drop and recreate the store, then exit",
			},
			&cli.BoolFlag{
				Name:  "print-config",
				Usage: "print the effective config and exit",
			},
		},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	if c.Bool("print-config") {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if err := cfg.InitDirs(); err != nil {
		return err
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return err
	}
	defer application.Release()

	if c.Bool("initdb") {
		if err := application.InitDb(); err != nil {
			return err
		}
		zap.S().Info("store initialized")
		return nil
	}

	webserver.Init(application)
	adminapi.Init()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		<-ctx.Done()
		zap.S().Info("shutting down admin server")
		timeout := time.Duration(cfg.Web.ShutdownTimeout) * time.Second
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return webserver.Shutdown(sctx)
	})
	return g.Wait()
}
