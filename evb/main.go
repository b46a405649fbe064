package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	eventbuilder "github.com/next-exp/cebra_go/pkg"
	"github.com/next-exp/cebra_go/pkg/export"
)

var configuration eventbuilder.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	eventbuilder.SetConfiguration(configuration)
	eventbuilder.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	channelMap, err := loadChannelMap()
	if err != nil {
		return fmt.Errorf("error loading channel map: %w", err)
	}

	events, err := eventbuilder.ReadEventsFromFile(configuration.FileIn, configuration.Skip, configuration.MaxEvents)
	if err != nil {
		return fmt.Errorf("error reading events: %w", err)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d", len(events))
		logger.Info(message, "main")
	}

	columns, stats, err := buildColumns(events, channelMap)
	if err != nil {
		return fmt.Errorf("error building channel data: %w", err)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Rows: %d, unmapped hits: %d, ignored hits: %d", stats.Rows, stats.Unmapped, stats.Ignored)
		logger.Info(message, "main")
	}

	opts, err := export.OptionsFromConfiguration(configuration)
	if err != nil {
		return err
	}
	writer, err := export.NewWriter(configuration.Format, configuration.FileOut, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(writer, channelMap.Entries(), columns); err != nil {
		return err
	}

	if VerbosityLevel > 0 {
		duration := time.Since(start)
		message := fmt.Sprintf("Total time: %d ms", duration.Milliseconds())
		logger.Info(message, "main")
	}
	return nil
}

// writeOutput always closes the writer, reporting its error along with any
// write failure.
func writeOutput(writer export.Writer, entries []eventbuilder.ChannelMapEntry, columns []eventbuilder.Column) error {
	if err := writer.WriteChannelMap(entries); err != nil {
		return errors.Join(err, writer.Close())
	}
	if err := writer.WriteColumns(columns); err != nil {
		return errors.Join(err, writer.Close())
	}
	return writer.Close()
}

func loadChannelMap() (*eventbuilder.ChannelMap, error) {
	if configuration.NoDB {
		return eventbuilder.LoadChannelMapFile(configuration.ChannelMap)
	}
	dbConn, err := eventbuilder.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	defer dbConn.Close()
	return eventbuilder.LoadChannelMapFromDB(dbConn, configuration.RunNumber)
}

// A single worker keeps one ChannelData for the whole run and reports its
// memory use; more workers shard the events.
func buildColumns(events [][]eventbuilder.CompassData, channelMap *eventbuilder.ChannelMap) ([]eventbuilder.Column, eventbuilder.BuildStats, error) {
	if configuration.NumWorkers > 1 {
		return eventbuilder.BuildColumns(events, channelMap, configuration.NumWorkers)
	}

	data := eventbuilder.NewChannelData()
	for _, event := range events {
		data.AppendEvent(event, channelMap)
	}
	stats := eventbuilder.BuildStats{
		Rows:     data.Rows(),
		Unmapped: data.UnmappedHits(),
		Ignored:  data.IgnoredHits(),
	}
	if VerbosityLevel > 1 {
		message := fmt.Sprintf("Channel data size: %d bytes", data.UsedSize())
		logger.Info(message, "main")
	}
	return data.Finalize(), stats, nil
}
