package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gleipnir/internal/book"
	"gleipnir/internal/common"
	"gleipnir/internal/input"
	"gleipnir/internal/sim"
)

var (
	mode         string
	seed         int64
	midPrice     uint64
	numEvents    int
	inputPath    string
	outputPath   string
	replayOutput string
	metricsAddr  string
	capacity     int
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:          "gleipnir",
		Short:        "Single-instrument limit order book matching engine",
		RunE:         run,
		SilenceUsage: true,
	}
	root.Flags().StringVar(&mode, "mode", "gen", "input mode: gen or replay")
	root.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	root.Flags().Uint64Var(&midPrice, "mid-price", 10000, "generator mid price in ticks")
	root.Flags().IntVar(&numEvents, "num-of-events", 100000, "number of generated events")
	root.Flags().StringVar(&inputPath, "input", "", "replay file to feed the engine")
	root.Flags().StringVar(&outputPath, "output", "book_events.log", "book event log path")
	root.Flags().StringVar(&replayOutput, "replay-output", "", "record the generated input stream to this replay file")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	root.Flags().IntVar(&capacity, "capacity", book.DefaultCapacity, "resting order arena capacity")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	source, cleanup, err := buildSource()
	if err != nil {
		return err
	}
	defer cleanup()

	runner, err := sim.NewRunner(source, sim.Config{
		ArenaCapacity: capacity,
		OutputPath:    outputPath,
		MetricsAddr:   metricsAddr,
	})
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

func buildSource() (input.Source, func(), error) {
	switch mode {
	case "gen":
		gen := input.NewGenerator(input.GeneratorConfig{
			Seed:      seed,
			MidPrice:  common.Price(midPrice),
			NumEvents: numEvents,
		})
		if replayOutput == "" {
			return gen, func() {}, nil
		}
		writer, err := input.NewReplayWriter(replayOutput)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := writer.Close(); err != nil {
				log.Error().Err(err).Msg("unable to close replay recording")
			}
		}
		return input.NewRecordingSource(gen, writer), cleanup, nil

	case "replay":
		if inputPath == "" {
			return nil, nil, errors.New("--input is required in replay mode")
		}
		reader, err := input.NewReplayReader(inputPath)
		if err != nil {
			return nil, nil, err
		}
		return reader, func() { reader.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown mode %q", mode)
}
