package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-bidagri-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	var options globalOptions
	flagSet := options.flagSet()
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			args = []string{"--help"}
		} else {
			return err
		}
	} else {
		args = flagSet.Args()
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(cfg.GetLogLevel(), options.logLevel)

	a := newApp(ctx, cfg, options, out)
	root := a.root()
	if len(args) == 0 || isHelpFlag(args[0]) {
		displayAppname(out, cfg.GetAppName())
		root.printHelp(out)
		fmt.Fprintln(out, "\nGlobal flags:")
		fmt.Fprint(out, flagSet.FlagUsages())
		return nil
	}
	return root.execute(args, out)
}

// setupLogging writes human-readable logs to stderr so command output stays clean.
func setupLogging(configured, override string) {
	levelName := configured
	if override != "" {
		levelName = override
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
