package eventbuilder

import (
	"errors"
	"fmt"
)

type Configuration struct {
	FileIn             string `json:"file_in"`
	FileOut            string `json:"file_out"`
	Format             string `json:"format"`
	ChannelMap         string `json:"channel_map"`
	NoDB               bool   `json:"no_db"`
	Host               string `json:"host"`
	User               string `json:"user"`
	Passwd             string `json:"pass"`
	DBName             string `json:"dbname"`
	RunNumber          int    `json:"run_number"`
	MaxEvents          int    `json:"max_events"`
	Skip               int    `json:"skip"`
	Verbosity          int    `json:"verbosity"`
	NumWorkers         int    `json:"num_workers"`
	CompressionLevel   int    `json:"compression_level"`
	ParquetCompression string `json:"parquet_compression"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	var config Configuration
	config.Format = "hdf5"
	config.NoDB = true
	config.Host = "localhost"
	config.User = "cebrareader"
	config.Passwd = "readonly"
	config.DBName = "CEBRA"
	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.NumWorkers = 1
	config.CompressionLevel = 4
	config.ParquetCompression = "snappy"
	return config
}

func (c Configuration) Validate() error {
	var errs []error
	if c.FileIn == "" {
		errs = append(errs, errors.New("file_in is required"))
	}
	if c.FileOut == "" {
		errs = append(errs, errors.New("file_out is required"))
	}
	if c.NoDB && c.ChannelMap == "" {
		errs = append(errs, errors.New("channel_map is required when no_db is set"))
	}
	if c.MaxEvents < 0 {
		errs = append(errs, fmt.Errorf("max_events must be >= 0, got %d", c.MaxEvents))
	}
	if c.Skip < 0 {
		errs = append(errs, fmt.Errorf("skip must be >= 0, got %d", c.Skip))
	}
	if c.NumWorkers < 1 {
		errs = append(errs, fmt.Errorf("num_workers must be >= 1, got %d", c.NumWorkers))
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("compression_level must be in [0, 9], got %d", c.CompressionLevel))
	}
	return errors.Join(errs...)
}
