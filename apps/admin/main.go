package main

import (
	"log"
	"os"

	"github.com/trezcool/peereval/core"
	logsvc "github.com/trezcool/peereval/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// start CLI
	cli := newCommandLine(conf, logger, os.Stdout)
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
