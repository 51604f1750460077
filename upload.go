package copytables

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/sync/errgroup"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
	"github.com/seldebrings/sls-copy-stack-tables/internal/pool"
)

// uploadAll writes every source record verbatim into its target table.
// The first failed write fails the stage; writes already admitted still complete.
func (c *Copier) uploadAll(ctx context.Context, logger *slog.Logger, cc *copyContext, p *pool.Pool) error {
	var g errgroup.Group

	for _, t := range cc.tables {
		g.Go(func() error {
			records := cc.recordsFor(t.Source)

			outcome, err := p.Run(ctx, len(records), func(ctx context.Context, i int) error {
				_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
					TableName: aws.String(t.Target),
					Item:      records[i],
				})
				if err != nil {
					return errors.NewTableError("put", t.Target, err)
				}
				return nil
			})

			cc.update(t, func(r *TableResult) { r.Uploaded = outcome.Succeeded })

			if err != nil {
				logger.ErrorContext(ctx, "data upload failed",
					"table", t.Target,
					"stage", cc.targetStage,
					"uploaded", outcome.Succeeded,
					"failed", len(records)-outcome.Succeeded,
					"error", err,
				)
				return err
			}

			logger.InfoContext(ctx, "records uploaded",
				"count", outcome.Succeeded,
				"table", t.Target,
				"stage", cc.targetStage,
			)
			return nil
		})
	}

	return g.Wait()
}
