package copytables

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/sync/errgroup"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

// resolveKeys describes every table of the run in one stage and records its key
// schema. Lookups run in parallel; the first failure is returned once all finish.
func (c *Copier) resolveKeys(ctx context.Context, logger *slog.Logger, cc *copyContext, d direction) error {
	var g errgroup.Group

	for _, t := range cc.tables {
		g.Go(func() error {
			name := cc.physical(t, d)

			out, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(name),
			})
			if err != nil {
				logger.ErrorContext(ctx, "failed to describe table",
					"table", name, "stage", cc.stage(d), "error", err)
				return errors.NewTableError("describe", name, err)
			}
			if out.Table == nil {
				return errors.NewTableError("describe", name, errors.ErrMissingPartitionKey)
			}

			ks, err := keySchemaFrom(out.Table.KeySchema)
			if err != nil {
				logger.ErrorContext(ctx, "table has no partition key",
					"table", name, "stage", cc.stage(d))
				return errors.NewTableError("describe", name, err)
			}

			cc.setKeys(t, d, ks)
			logger.DebugContext(ctx, "resolved key schema",
				"table", name,
				"stage", cc.stage(d),
				"partition_key", ks.PartitionKey,
				"sort_key", ks.SortKey,
			)
			return nil
		})
	}

	return g.Wait()
}
