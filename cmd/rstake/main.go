// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/rstake/node/admin"
	"github.com/rstake/node/api"
	"github.com/rstake/node/cmd/rstake/httpserver"
	"github.com/rstake/node/eventdb"
	"github.com/rstake/node/genesis"
	"github.com/rstake/node/log"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/metrics"
	"github.com/rstake/node/runtime"
	"github.com/rstake/node/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "rstake",
		Usage:     "Era cycle node of a pooled staking service",
		Copyright: "2025 The rstake developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			epochDurationFlag,
			epochStartFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiEventsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			maxEraLagFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "single node with a dev genesis and a manual epoch clock",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					persistFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiEventsLimitFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					enableAPILogsFlag,
					pprofFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	gen := loadGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gen)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventDB := openEventDB(instanceDir)
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	st, err := initState(gen, mainDB)
	if err != nil {
		return err
	}
	start, err := loadEpochStart(mainDB, ctx.Int64(epochStartFlag.Name))
	if err != nil {
		return err
	}
	duration := ctx.Duration(epochDurationFlag.Name)
	clock, err := runtime.NewTimeClock(start, duration)
	if err != nil {
		return err
	}
	logger.Info("epoch clock", "start", start, "duration", duration, "epoch", clock.Epoch())

	return run(exitSignal, ctx, &node{
		gen:         gen,
		st:          st,
		clock:       clock,
		eventDB:     eventDB,
		instanceDir: instanceDir,
		logLevel:    logLevel,
		maxEraLag:   ctx.Uint64(maxEraLagFlag.Name),
		watchEvery:  duration,
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	gen := genesis.NewDevnet()

	var (
		mainDB      *lvldb.LevelDB
		eventDB     *eventdb.EventDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gen)
		mainDB = openMainDB(ctx, instanceDir)
		eventDB = openEventDB(instanceDir)
	} else {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		eventDB = openMemEventDB()
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	st, err := initState(gen, mainDB)
	if err != nil {
		return err
	}

	return run(exitSignal, ctx, &node{
		gen:         gen,
		st:          st,
		clock:       runtime.NewManualClock(gen.LatestEra),
		eventDB:     eventDB,
		instanceDir: instanceDir,
		logLevel:    logLevel,
		solo:        true,
	})
}

type node struct {
	gen         *genesis.Genesis
	st          *state.State
	clock       runtime.Clock
	eventDB     *eventdb.EventDB
	instanceDir string
	logLevel    *slog.LevelVar
	maxEraLag   uint64
	watchEvery  time.Duration
	solo        bool
}

// run serves the node until exitSignal is done or a server fails.
func run(exitSignal context.Context, ctx *cli.Context, n *node) error {
	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
	}

	rt := runtime.New(n.st, runtime.Options{
		Manager: n.gen.Manager,
		Clock:   n.clock,
		Events:  n.eventDB,
	})
	defer func() { logger.Info("stopping runtime..."); rt.Stop() }()

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiClose := api.New(rt, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: apiLogs,
		SlowQueries:     ctx.Duration(apiSlowQueriesThresholdFlag.Name),
		Log5xxErrors:    ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:   metricsEnabled,
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		SoloMode:        n.solo,
	})
	defer func() { logger.Info("closing subscriptions..."); apiClose() }()

	apiURL, srvClose, err := startAPIServer(
		ctx.String(apiAddrFlag.Name),
		apiHandler,
		time.Duration(ctx.Int(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvClose() }()

	if metricsEnabled {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		logger.Info("metrics server started", "url", url)
	}

	health := admin.NewRuntimeHealth(rt, n.maxEraLag)
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.Start("admin", ctx.String(adminAddrFlag.Name), admin.HTTPHandler(n.logLevel, apiLogs, health), "/admin")
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		logger.Info("admin server started", "url", url)
	}

	printStartupMessage(ctx.App.Name, n.gen, n.instanceDir, apiURL, n.watchEvery)
	if n.solo {
		printDevAccounts()
	}

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		watchEras(groupCtx, health, n.watchEvery)
		return nil
	})
	if !n.solo {
		group.Go(func() error {
			syncClock(groupCtx, n.watchEvery)
			return nil
		})
	}
	return group.Wait()
}
