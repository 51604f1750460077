package config

import "flag"

// RegisterFlags binds every setting to a flag of fs, using the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.SourceStage, "source-stage", c.SourceStage, "Stage you want to copy data from")
	fs.StringVar(&c.TargetStage, "target-stage", c.TargetStage, "Stage you want to copy data to")
	fs.BoolVar(&c.OverwriteAllData, "overwrite-all-data", c.OverwriteAllData,
		"Delete every existing item of the target tables before uploading")
	fs.StringVar(&c.AfterDeploy, "after-deploy", c.AfterDeploy,
		"Run the custom.copyDataDeploy copy of the manifest if its target is this freshly deployed stage")

	fs.StringVar(&c.Manifest, "manifest", c.Manifest, "Serverless service file or CloudFormation template")
	fs.StringVar(&c.StageToken, "stage-token", c.StageToken,
		"Placeholder replaced by the stage in table names (default: derived from the manifest)")

	fs.StringVar(&c.Region, "region", c.Region, "AWS region (default: provider.region, then the AWS environment)")
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "Custom DynamoDB endpoint, e.g. http://localhost:4566")

	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Maximum in-flight item writes and deletes")
	fs.Float64Var(&c.WriteRate, "write-rate", c.WriteRate, "Maximum item writes and deletes per second (0 = unlimited)")
	fs.IntVar(&c.MaxRetries, "max-retries", c.MaxRetries, "Retries of throttled requests (0 disables retries)")
	fs.BoolVar(&c.ConsistentScan, "consistent-scan", c.ConsistentScan, "Use strongly consistent scans")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: text or json")
	fs.StringVar(&c.SeqURL, "seq-url", c.SeqURL, "Also ship logs to the Seq server at this URL")
}
