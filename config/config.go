// Package config holds the settings of a copy run and validates them against an
// embedded CUE schema.
//
// Settings come from command line flags; the manifest contributes the table
// list, the stage token and, for post-deploy runs, the stages themselves.
//
// # Basic Usage
//
//	cfg := config.Default()
//	fs := flag.NewFlagSet("copy-stack-tables", flag.ContinueOnError)
//	cfg.RegisterFlags(fs)
//	if err := fs.Parse(os.Args[1:]); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"log/slog"

	copytables "github.com/seldebrings/sls-copy-stack-tables"
	"github.com/seldebrings/sls-copy-stack-tables/internal/pool"
	"github.com/seldebrings/sls-copy-stack-tables/manifest"
)

// Config is the complete configuration of one invocation.
type Config struct {
	SourceStage      string `json:"sourceStage"`
	TargetStage      string `json:"targetStage"`
	OverwriteAllData bool   `json:"overwriteAllData"`

	// AfterDeploy is the stage that was just deployed. When set, stages come from
	// custom.copyDataDeploy and the copy only runs if its target is this stage.
	AfterDeploy string `json:"afterDeploy,omitempty"`

	Manifest   string `json:"manifest"`
	StageToken string `json:"stageToken,omitempty"`

	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	Concurrency    int     `json:"concurrency"`
	WriteRate      float64 `json:"writeRate"`
	MaxRetries     int     `json:"maxRetries"`
	ConsistentScan bool    `json:"consistentScan"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
	SeqURL    string `json:"seqUrl,omitempty"`
}

// Default returns the configuration used when no flag overrides a setting.
func Default() Config {
	return Config{
		Manifest:    manifest.DefaultPath,
		Concurrency: pool.DefaultSize,
		MaxRetries:  3,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Request builds the copy request for m.
//
// Manual runs take their stages from the configuration. Post-deploy runs take
// them from custom.copyDataDeploy; a manifest without that section yields an
// empty request, which is never triggered.
func (c Config) Request(m *manifest.Manifest) copytables.Request {
	token := c.StageToken
	if token == "" {
		token = m.StageToken()
	}

	if c.AfterDeploy != "" {
		req, ok := m.DeployRequest()
		if !ok {
			return copytables.Request{}
		}
		req.StageToken = token
		return req
	}

	return copytables.Request{
		SourceStage:      c.SourceStage,
		TargetStage:      c.TargetStage,
		OverwriteAllData: c.OverwriteAllData,
		StageToken:       token,
		Tables:           m.Tables(),
	}
}

// CopierOptions translates the configuration into copier options.
// The manifest region is used when no region is configured.
func (c Config) CopierOptions(m *manifest.Manifest, logger *slog.Logger) []copytables.Option {
	region := c.Region
	if region == "" && m != nil {
		region = m.Region()
	}

	opts := []copytables.Option{
		copytables.WithLogger(logger),
		copytables.WithConcurrency(c.Concurrency),
		copytables.WithWriteRateLimit(c.WriteRate),
		copytables.WithMaxRetries(c.MaxRetries),
	}
	if region != "" {
		opts = append(opts, copytables.WithRegion(region))
	}
	if c.Endpoint != "" {
		opts = append(opts, copytables.WithEndpoint(c.Endpoint))
	}
	if c.ConsistentScan {
		opts = append(opts, copytables.WithConsistentScan())
	}
	return opts
}
