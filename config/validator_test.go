package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.SourceStage = "dev"
		cfg.TargetStage = "prod"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid manual run", mutate: func(c *Config) {}},
		{name: "valid with all settings", mutate: func(c *Config) {
			c.Region = "eu-central-1"
			c.Endpoint = "http://localhost:4566"
			c.SeqURL = "https://seq.internal:5341"
			c.WriteRate = 12.5
			c.LogFormat = "json"
			c.LogLevel = "debug"
		}},
		{name: "valid after deploy without stages", mutate: func(c *Config) {
			c.SourceStage, c.TargetStage = "", ""
			c.AfterDeploy = "prod"
		}},
		{name: "missing source stage", mutate: func(c *Config) { c.SourceStage = "" }, wantErr: true},
		{name: "same stages", mutate: func(c *Config) { c.TargetStage = "dev" }, wantErr: true},
		{name: "stage with spaces", mutate: func(c *Config) { c.TargetStage = "my stage" }, wantErr: true},
		{name: "empty manifest path", mutate: func(c *Config) { c.Manifest = "" }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: true},
		{name: "negative write rate", mutate: func(c *Config) { c.WriteRate = -1 }, wantErr: true},
		{name: "too many retries", mutate: func(c *Config) { c.MaxRetries = 50 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "endpoint without scheme", mutate: func(c *Config) { c.Endpoint = "localhost:4566" }, wantErr: true},
		{name: "malformed region", mutate: func(c *Config) { c.Region = "Europe" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
		})
	}
}
