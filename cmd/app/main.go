package main

import (
	"flag"
	"log"
	"os"

	"github.com/grafana/pyroscope-go"

	"TradePulse/internal/di"
	"TradePulse/pkg/config"
	applogger "TradePulse/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	boot, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	boot = boot.With("main")
	boot.Info("starting",
		applogger.String("env", cfg.Environment),
		applogger.String("mode", cfg.Trading.Mode),
		applogger.Strings("storage", cfg.Storage.Backends))

	if cfg.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Profiling.AppName,
			ServerAddress:   cfg.Profiling.ServerAddress,
			Tags:            map[string]string{"env": cfg.Environment},
			Logger:          applogger.Printf{L: boot},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			boot.Warn("pyroscope start failed", applogger.Error(err))
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		boot.Error("app initialization failed", applogger.Error(err))
		os.Exit(1)
	}
	app.SetCleanup(cleanup)

	if err := app.Run(); err != nil {
		boot.Error("app error", applogger.Error(err))
		os.Exit(1)
	}
}
