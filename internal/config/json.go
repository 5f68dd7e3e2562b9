package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/moodstream/internal/flagx"
)

// JsonConfig is the DTO for reading JSON configuration files. Its fields are
// copied into the runtime Config after unmarshalling. Empty fields leave the
// current value untouched, so a partial file only overrides what it names.
type JsonConfig struct {
	Backend        string `json:"backend"`
	DatabaseDSN    string `json:"database_dsn"`
	LogLevel       string `json:"log_level"`
	PhotosBackend  string `json:"photos_backend"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config command-line flags. If neither flag is set, nothing is loaded. An
// unreadable or invalid file panics, as a broken explicit config is not
// something to run with.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Backend != "" {
		config.Backend = c.Backend
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.PhotosBackend != "" {
		config.PhotosBackend = c.PhotosBackend
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
