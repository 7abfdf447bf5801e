// Command taskdelta inspects incremental-build change-detection state.
package main

import (
	"taskdelta/cmd/taskdelta/internal/cli"
	"taskdelta/internal/log"
	"taskdelta/pkg/config"
)

func main() {
	// Config sets the baseline verbosity; CLI flags may override it.
	cfg := config.Load()
	log.Init(cfg.Verbosity, cfg.LogFormat)

	cli.Execute()
}
