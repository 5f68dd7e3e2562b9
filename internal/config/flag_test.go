package config

import (
	"flag"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "all flags set", args: []string{"cmd",
			"-k", "postgres", "-d", "db", "-l", "debug", "-o", "s3",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		},
			expected: &Config{
				Backend:        "postgres",
				DatabaseDSN:    "db",
				LogLevel:       "debug",
				PhotosBackend:  "s3",
				S3AccessKey:    "user",
				S3SecretKey:    "password",
				S3Bucket:       "bucket",
				S3Region:       "us-west-1",
				S3BaseEndpoint: "http://endpoint",
			}},
		{name: "no flags keep current values", args: []string{"cmd"},
			expected: &Config{Backend: "memory", LogLevel: "info"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			config := &Config{Backend: "memory", LogLevel: "info"}
			if tt.name == "all flags set" {
				config = &Config{}
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
