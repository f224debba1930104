package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-bvh/pkg/config"
	"github.com/df07/go-raytracer-bvh/pkg/logger"
)

// setupLogging initialises the global logger from the config, with -v,
// -vv and --log-file taking priority
func setupLogging(ctx *cli.Context, cfg *config.Config) error {
	level := cfg.Logging.Level
	if ctx.GlobalBool("v") {
		level = "info"
	}
	if ctx.GlobalBool("vv") {
		level = "debug"
	}

	logFile := cfg.Logging.LogFile
	if ctx.GlobalIsSet("log-file") {
		logFile = ctx.GlobalString("log-file")
	}

	return logger.Init(level, logFile)
}
