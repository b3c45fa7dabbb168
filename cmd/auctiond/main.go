package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/erfannorozi54/highest-voice/api/server"
	"github.com/erfannorozi54/highest-voice/api/service"
	"github.com/erfannorozi54/highest-voice/config"
	"github.com/erfannorozi54/highest-voice/database"
	"github.com/erfannorozi54/highest-voice/database/mysql"
	"github.com/erfannorozi54/highest-voice/engine"
	"github.com/erfannorozi54/highest-voice/keeper"
)

var (
	// configPathFlag specifies the node config file path.
	configPathFlag = &cli.StringFlag{
		Name:     "config-file",
		Usage:    "The filepath to a yaml file, flag is required",
		Required: true,
	}
)

func main() {
	app := cli.App{
		Name:   "auctiond",
		Usage:  "recurring sealed-bid second-price auction node",
		Action: exec,
		Flags: []cli.Flag{
			configPathFlag,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Printf("ERROR: running auctiond failed: %v", err)
		os.Exit(1)
	}
}

func exec(cliCtx *cli.Context) error {
	cfg := &config.Config{}
	if err := config.Load(cliCtx.String(configPathFlag.Name), cfg); err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Genesis:   cfg.Genesis,
		BatchSize: cfg.BatchSize,
		Treasury:  common.HexToAddress(cfg.Treasury),
		Payout:    engine.NewLedgerSink(),
	})

	keep, err := keeper.New(
		eng,
		time.Duration(cfg.KeeperSeconds)*time.Second,
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cliCtx.Context)
	defer cancel()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Printf("INFO: Got interrupt, shutting down...")
		cancel()
	}()

	if cfg.MySQL.Host != "" {
		db, err := mysql.NewMySQLDB(cfg.MySQL)
		if err != nil {
			return err
		}
		rec, err := database.NewRecorder(db, eng)
		if err != nil {
			return err
		}
		go rec.Run(ctx)
	}

	go keep.Run(ctx)

	return server.New(
		cfg.HTTPPort,
		cfg.VsockPort,
		service.New(eng, keep),
	).Run()
}
