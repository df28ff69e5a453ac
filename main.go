package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
)

func newLogger(jsonOutput bool) zerolog.Logger {
	var logger zerolog.Logger
	if jsonOutput {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false, TimeFormat: time.RFC3339}
		consoleWriter.TimeFormat = "[" + time.RFC3339 + "]"
		consoleWriter.PartsOrder = []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		}
		logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	}

	level := zerolog.InfoLevel
	envLevel, ok := os.LookupEnv("LOG_LEVEL")
	if ok {
		parsed, err := zerolog.ParseLevel(envLevel)
		if err != nil {
			logger.Warn().Err(err).Msg("could not parse environment variable LOG_LEVEL")
			return logger
		}
		level = parsed
	}

	return logger.Level(level)
}

func main() {
	args := Command{}
	cli := kong.Parse(&args,
		kong.Name("ssret"),
		kong.Description("Stupid Simple Retention: keeps daily, weekly and monthly backups and deletes the rest."),
		kong.UsageOnError(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignals(cancel)

	logger := newLogger(args.LogJSON)
	var err error
	switch cli.Command() {
	case "version":
		err = versionCommand(os.Stdout)
	case "plan":
		err = planCommand(ctx, args, logger, os.Stdout)
	case "apply":
		err = applyCommand(ctx, args, logger, os.Stdout)
	case "daemon":
		err = daemonCommand(ctx, args, logger)
	case "history":
		err = historyCommand(ctx, args, logger, os.Stdout)
	default:
		panic(cli.Command())
	}
	if err != nil {
		logger.Error().Err(err).Msg(cli.Command() + " error")
		cli.Exit(1)
	}
}

func setupSignals(onSignal func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		onSignal()
	}()
}
