package copytables

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/seldebrings/sls-copy-stack-tables/internal/dynamoapi"
	"github.com/seldebrings/sls-copy-stack-tables/internal/pool"
)

// Copier copies table contents between stages.
// It is safe for concurrent use; every Run owns its own state.
type Copier struct {
	api            dynamoapi.DynamoDBAPI
	logger         *slog.Logger
	concurrency    int
	writeRate      float64
	singlePageScan bool
	consistentScan bool
}

// New creates a Copier backed by a DynamoDB client built from the default AWS
// configuration and the provided options.
func New(ctx context.Context, opts ...Option) (*Copier, error) {
	options := defaultOptions()
	applyOptions(options, opts)

	var cfg aws.Config
	if options.awsConfig != nil {
		cfg = *options.awsConfig
	} else {
		loadOpts := []func(*config.LoadOptions) error{
			config.WithRetryer(func() aws.Retryer {
				if options.maxRetries == 0 {
					return aws.NopRetryer{}
				}
				return NewRetryer(options.maxRetries)
			}),
		}
		if options.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(options.region))
		}
		if options.accessKeyID != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(options.accessKeyID, options.secretKey, ""),
			))
		}

		var err error
		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if options.endpoint != "" {
			o.BaseEndpoint = aws.String(options.endpoint)
		}
	})

	return newCopier(client, options), nil
}

// NewWithClient creates a Copier using the provided DynamoDB client.
// This is useful for testing with mock clients or when you need custom client configuration.
func NewWithClient(client dynamoapi.DynamoDBAPI, opts ...Option) *Copier {
	options := defaultOptions()
	applyOptions(options, opts)
	return newCopier(client, options)
}

func newCopier(client dynamoapi.DynamoDBAPI, options *clientOptions) *Copier {
	logger := options.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	concurrency := options.concurrency
	if concurrency <= 0 {
		concurrency = pool.DefaultSize
	}

	return &Copier{
		api:            client,
		logger:         logger,
		concurrency:    concurrency,
		writeRate:      options.writeRate,
		singlePageScan: options.singlePageScan,
		consistentScan: options.consistentScan,
	}
}
