package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfiguration(t *testing.T) {
	filename := writeConfig(t, `{
		"file_in": "run_184.jsonl",
		"file_out": "run_184.parquet",
		"format": "parquet",
		"channel_map": "channels.json",
		"num_workers": 4,
		"parquet_compression": "zstd"
	}`)

	config, err := LoadConfiguration(filename)
	require.NoError(t, err)
	assert.Equal(t, "run_184.jsonl", config.FileIn)
	assert.Equal(t, "parquet", config.Format)
	assert.Equal(t, 4, config.NumWorkers)
	assert.Equal(t, "zstd", config.ParquetCompression)
	// untouched keys keep their defaults
	assert.True(t, config.NoDB)
	assert.Equal(t, 4, config.CompressionLevel)
	assert.Equal(t, "CEBRA", config.DBName)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, `{"file_in": `))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, `{"file_in": "a.jsonl", "file_out": "b.h5"}`))
	assert.ErrorContains(t, err, "channel_map")
}
