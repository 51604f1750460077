package copytables

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// clientOptions holds configuration options for the Copier.
type clientOptions struct {
	logger         *slog.Logger
	region         string
	endpoint       string
	awsConfig      *aws.Config
	accessKeyID    string
	secretKey      string
	maxRetries     int
	concurrency    int
	writeRate      float64
	singlePageScan bool
	consistentScan bool
}

// Option is a functional option for configuring the Copier.
type Option func(*clientOptions)

// WithLogger configures the copier with a custom logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRegion sets the AWS region of the tables.
// If not specified, uses the region from the default credential chain.
func WithRegion(region string) Option {
	return func(opts *clientOptions) {
		opts.region = region
	}
}

// WithEndpoint sets a custom DynamoDB endpoint URL.
// This is useful for local testing with LocalStack or DynamoDB Local.
func WithEndpoint(endpoint string) Option {
	return func(opts *clientOptions) {
		opts.endpoint = endpoint
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(cfg *aws.Config) Option {
	return func(opts *clientOptions) {
		opts.awsConfig = cfg
	}
}

// WithStaticCredentials uses fixed credentials instead of the default chain.
func WithStaticCredentials(accessKeyID, secretAccessKey string) Option {
	return func(opts *clientOptions) {
		opts.accessKeyID = accessKeyID
		opts.secretKey = secretAccessKey
	}
}

// WithMaxRetries sets how many times throttled or network-failed requests are retried.
// Default is 3 retries. Set to 0 to disable retries: a throttled or failed
// request then fails its stage on the first attempt.
func WithMaxRetries(maxRetries int) Option {
	return func(opts *clientOptions) {
		if maxRetries >= 0 {
			opts.maxRetries = maxRetries
		}
	}
}

// WithConcurrency sets the maximum number of in-flight item writes and deletes
// across all tables of a run. Default is 25.
func WithConcurrency(concurrency int) Option {
	return func(opts *clientOptions) {
		if concurrency > 0 {
			opts.concurrency = concurrency
		}
	}
}

// WithWriteRateLimit caps item writes and deletes per second across the run.
// Zero means unlimited.
func WithWriteRateLimit(perSecond float64) Option {
	return func(opts *clientOptions) {
		if perSecond >= 0 {
			opts.writeRate = perSecond
		}
	}
}

// WithSinglePageScan reads only the first scan page of every table.
// Items beyond the first 1 MB page are not copied.
func WithSinglePageScan() Option {
	return func(opts *clientOptions) {
		opts.singlePageScan = true
	}
}

// WithConsistentScan makes table scans strongly consistent.
func WithConsistentScan() Option {
	return func(opts *clientOptions) {
		opts.consistentScan = true
	}
}

// defaultOptions returns the default configuration options.
func defaultOptions() *clientOptions {
	return &clientOptions{
		logger:      nil, // No default logger
		maxRetries:  3,
		concurrency: 25,
	}
}

// applyOptions applies the given options to the client options.
func applyOptions(opts *clientOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
}
