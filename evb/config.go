package main

import (
	"encoding/json"
	"fmt"
	"os"

	eventbuilder "github.com/next-exp/cebra_go/pkg"
)

// LoadConfiguration overlays the JSON file on the defaults.
func LoadConfiguration(filename string) (eventbuilder.Configuration, error) {
	config := eventbuilder.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, config.Validate()
}

func printConfiguration(config eventbuilder.Configuration, logger eventbuilder.Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Format: %s", config.Format), "config")
	logger.Info(fmt.Sprintf("Channel map: %s", config.ChannelMap), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Parquet compression: %s", config.ParquetCompression), "config")
}
