package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core/evaluation"
)

const (
	kindRows    = "rows"
	kindSummary = "summary"
)

func (cli *commandLine) export(kind, out string) (err error) {
	ctx := context.Background()
	backend, closeStore, err := openStoreFunc(ctx, cli.conf)
	if err != nil {
		return errors.Wrap(err, "opening store")
	}
	defer func() { _ = closeStore() }()

	rows, err := evaluation.NewStore(backend, cli.logger).Rows(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = cli.out
	if out != "-" {
		var f *os.File
		if f, err = os.Create(out); err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer func() {
			if cErr := f.Close(); err == nil {
				err = cErr
			}
		}()
		w = f
	}

	if kind == kindSummary {
		err = evaluation.WriteSummaryCSV(w, evaluation.Summarize(rows))
	} else {
		err = evaluation.WriteRowsCSV(w, rows)
	}
	if err == nil && out != "-" {
		_, _ = fmt.Fprintf(cli.out, "%d rows exported to %s\n", len(rows), out)
	}
	return err
}
