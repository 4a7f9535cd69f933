package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Edjery/budget-trackr/internal/cli"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Load .env file for local development
	cli.LoadEnvFile()

	global := flag.NewFlagSet("budget-trackr", flag.ContinueOnError)
	global.SetOutput(stderr)
	showMetrics := global.Bool("metrics", false, "print collected metrics to stderr on exit")
	global.Usage = func() { usage(stderr, global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	name := global.Arg(0)
	cmd, ok := commands()[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		global.Usage()
		return 2
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := cli.SetupLogger(cfg)
	ctx := log.NewContext(context.Background(), logger)

	be, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		return 1
	}
	app, err := cli.NewApp(ctx, cfg, logger, be)
	if err != nil {
		_ = be.Close()
		logger.Error("Failed to load state", log.FieldError, err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	err = cmd.run(ctx, app, global.Args()[1:], stdout)

	if *showMetrics {
		if merr := app.WriteMetrics(stderr); merr != nil {
			logger.Error("Failed to write metrics", log.FieldError, merr)
		}
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		reportError(stderr, err)
		return 1
	}
	return 0
}

func reportError(w io.Writer, err error) {
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		fmt.Fprintln(w, "invalid input:")
		for _, fe := range verrs {
			fmt.Fprintf(w, "  %s\n", fe)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func usage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: budget-trackr [-metrics] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-11s %s\n", name, cmds[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	global.PrintDefaults()
}
