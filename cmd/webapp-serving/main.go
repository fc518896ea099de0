package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/ruteri/webapp-serving-backend/approuter"
	"github.com/ruteri/webapp-serving-backend/common"
	"github.com/ruteri/webapp-serving-backend/devserver"
	"github.com/ruteri/webapp-serving-backend/httpserver"
	"github.com/ruteri/webapp-serving-backend/serving"
	"github.com/urfave/cli/v2"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for the application",
	},
	&cli.StringFlag{
		Name:  "metrics-addr",
		Value: "127.0.0.1:8090",
		Usage: "address to listen on for Prometheus metrics",
	},
	&cli.StringFlag{
		Name:    "env",
		Value:   "",
		Usage:   "runtime environment: 'development' or 'production' (defaults to development)",
		EnvVars: []string{"APP_ENV"},
	},
	&cli.StringFlag{
		Name:  "root",
		Value: ".",
		Usage: "front-end source root holding the entry HTML template (development)",
	},
	&cli.StringFlag{
		Name:  "static-dir",
		Value: "dist",
		Usage: "directory of prebuilt client assets (production)",
	},
	&cli.StringFlag{
		Name:  "entry",
		Value: "index.html",
		Usage: "entry HTML file, relative to root/static-dir",
	},
	&cli.StringFlag{
		Name:  "bundler-addr",
		Value: "127.0.0.1:5173",
		Usage: "address of the bundler dev process (development)",
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	},
	&cli.BoolFlag{
		Name:  "log-uid",
		Value: false,
		Usage: "generate a uuid and add to all log messages",
	},
	&cli.StringFlag{
		Name:  "log-service",
		Value: common.PackageName,
		Usage: "add 'service' tag to logs",
	},
	&cli.BoolFlag{
		Name:  "pprof",
		Value: false,
		Usage: "enable pprof debug endpoint",
	},
	&cli.Int64Flag{
		Name:  "drain-seconds",
		Value: 45,
		Usage: "seconds to wait in drain HTTP request",
	},
}

func main() {
	// Optional .env support for local runs; flags and real environment win.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "webapp-serving",
		Usage: "Serve the single-page UI with SSR views and a development asset pipeline",
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			metricsAddr := cCtx.String("metrics-addr")
			root := cCtx.String("root")
			staticDir := cCtx.String("static-dir")
			entry := cCtx.String("entry")
			bundlerAddr := cCtx.String("bundler-addr")
			logJSON := cCtx.Bool("log-json")
			logDebug := cCtx.Bool("log-debug")
			logUID := cCtx.Bool("log-uid")
			logService := cCtx.String("log-service")
			enablePprof := cCtx.Bool("pprof")
			drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

			// Setup logger
			logger := common.SetupLogger(&common.LoggingOpts{
				Debug:   logDebug,
				JSON:    logJSON,
				Service: logService,
				Version: common.Version,
			})

			if logUID {
				id := uuid.Must(uuid.NewRandom())
				logger = logger.With("uid", id.String())
			}

			// The environment is read exactly once; every component receives
			// it through its constructor.
			env := common.EnvironmentFromString(cCtx.String("env"))
			logger.Info("Runtime environment resolved", "env", string(env))

			// Development asset server; the engine is created lazily on the
			// first UI request, not here.
			factory := devserver.NewProxyEngineFactory(bundlerAddr, logger)
			assets := devserver.New(factory, devserver.EngineConfig{
				Root:  root,
				Entry: entry,
			}, logger)

			servingController := serving.NewController(serving.Config{
				StaticDir: staticDir,
				EntryFile: entry,
			}, assets, logger)

			router := approuter.New(approuter.Config{
				Env:     env,
				Serving: servingController,
				Assets:  assets,
				Log:     logger,
			})
			router.Initialize(context.Background())

			cfg := &httpserver.HTTPServerConfig{
				ListenAddr:               listenAddr,
				MetricsAddr:              metricsAddr,
				Log:                      logger,
				EnablePprof:              enablePprof,
				DrainDuration:            drainDuration,
				GracefulShutdownDuration: 30 * time.Second,
				ReadTimeout:              60 * time.Second,
				WriteTimeout:             30 * time.Second,
			}

			server, err := httpserver.New(cfg, router.Handler())
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			shutdown := router.ShutdownHandler(server, os.Exit)

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			for range exit {
				logger.Info("Shutdown signal received")
				go shutdown()
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
