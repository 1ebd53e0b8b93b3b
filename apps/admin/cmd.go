package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/storage"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	openStoreFunc    = storage.Open      // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer
}

func newCommandLine(conf *core.Config, logger core.Logger, out io.Writer) *commandLine {
	return &commandLine{conf: conf, logger: logger, out: out}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hashpassword                          - hash the admin password, to set as ADMIN_PASSWORDHASH")
	fmt.Fprintln(cli.out, "  export -kind rows|summary [-out FILE] - export the recorded evaluations as CSV")
	fmt.Fprintln(cli.out, "  roster [-path FILE]                   - check the student roster and list its groups")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                - run database migrations (postgres store)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(cli.out)
	exportKind := exportCmd.String("kind", kindRows, "What to export: rows (every evaluation) or summary (mean score per peer).")
	exportOut := exportCmd.String("out", "-", "The output file, - for stdout.")

	rosterCmd := flag.NewFlagSet("roster", flag.ContinueOnError)
	rosterCmd.SetOutput(cli.out)
	rosterPath := rosterCmd.String("path", cli.conf.Roster.Path, "The roster CSV file.")

	switch args[1] {
	case "hashpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(pwd)

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *exportKind != kindRows && *exportKind != kindSummary {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportKind, *exportOut)

	case "roster":
		if err := rosterCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.checkRoster(*rosterPath)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}
