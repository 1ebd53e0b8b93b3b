package main

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/peereval/core"
	appfs "github.com/trezcool/peereval/fs"
	"github.com/trezcool/peereval/storage/database"
)

var (
	gooseRunFunc = goose.Run // mockable
	openDBFunc   = openDB    // mockable
)

func openDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(context.Background(), conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	return db.DB, nil
}

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Store.Backend != core.StorePostgres {
		return errors.Errorf("migrations only apply to the %s store (current: %s)", core.StorePostgres, cli.conf.Store.Backend)
	}
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(appfs.FS)
	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(args[0], db, "migrations", args[1:]...)
}
