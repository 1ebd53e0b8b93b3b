package main

import (
	"context"
	"fmt"
	"log"

	dig_container "github.com/trezcool/peereval/apps/api/di/dig"
	echoapi "github.com/trezcool/peereval/apps/api/echo"
	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/roster"
	"github.com/trezcool/peereval/storage"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dir *roster.Directory,
		closeStore storage.Closer,
		server echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		apiLogger.Info(fmt.Sprintf("roster: %d students, auth mode: %s, store: %s", dir.Len(), conf.Auth.Mode, conf.Store.Backend))

		if err := core.ParseEmailTemplates(); err != nil {
			apiLogger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
		}

		defer func() {
			if err := closeStore(); err != nil {
				apiLogger.Error(fmt.Sprintf("closing store: %v", err), err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
