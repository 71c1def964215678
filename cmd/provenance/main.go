// Command provenance reconstructs pointer provenance graphs from a memory
// event trace and its location registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/viant/provenance/builder"
	"github.com/viant/provenance/graph"
	"github.com/viant/provenance/store"
	"gopkg.in/yaml.v3"
)

const (
	flagTraceUsage     = "trace URL (file, mem, s3, gs, ...)"
	flagLocationsUsage = "location registry URL"
	flagOutputUsage    = "output URL, stdout when empty"
	flagFormatUsage    = "output format: yaml (forest) or flat (node/edge export)"
	flagConfigUsage    = "yaml config file, flags take precedence"
	flagVerboseUsage   = "enable debug logging"
)

var (
	flagTrace     string
	flagLocations string
	flagOutput    string
	flagFormat    string
	flagConfig    string
	flagVerbose   bool
)

func init() {
	flag.StringVar(&flagTrace, "trace", "", flagTraceUsage)
	flag.StringVar(&flagLocations, "locations", "", flagLocationsUsage)
	flag.StringVar(&flagOutput, "out", "", flagOutputUsage)
	flag.StringVar(&flagFormat, "format", "", flagFormatUsage)
	flag.StringVar(&flagConfig, "config", "", flagConfigUsage)
	flag.BoolVar(&flagVerbose, "v", false, flagVerboseUsage)
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	config := &Config{}
	if flagConfig != "" {
		loaded, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		config = loaded
	}
	config.merge(&Config{
		Trace:     flagTrace,
		Locations: flagLocations,
		Output:    flagOutput,
		Format:    flagFormat,
		Verbose:   flagVerbose,
	})
	if err := config.validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	service := store.New().WithLogger(logger)

	registry, err := service.LoadRegistry(ctx, config.Locations)
	if err != nil {
		return err
	}
	events, err := service.LoadTrace(ctx, config.Trace)
	if err != nil {
		return err
	}
	logger.Info("assembling provenance graphs",
		"events", len(events), "locations", registry.Len(), "registry", registry.Version())

	graphs := builder.Construct(registry, events, builder.WithLogger(logger))
	logger.Info("assembled", "graphs", graphs.Len())

	if config.Output == "" {
		return dump(graphs, config.Format)
	}
	if config.Format == "flat" {
		return service.SaveFlat(ctx, config.Output, graphs)
	}
	return service.SaveForest(ctx, config.Output, graphs)
}

func dump(graphs *graph.Graphs, format string) error {
	var value interface{} = graphs
	if format == "flat" {
		value = graph.Flatten(graphs)
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
