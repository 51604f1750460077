package copytables

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/sync/errgroup"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
	"github.com/seldebrings/sls-copy-stack-tables/internal/pool"
)

// clearTables deletes every record previously downloaded from the target tables.
// Delete failures are logged per table and never fail the run.
func (c *Copier) clearTables(ctx context.Context, logger *slog.Logger, cc *copyContext, p *pool.Pool) {
	if !cc.overwriteAllData {
		return
	}

	var g errgroup.Group

	for _, t := range cc.tables {
		g.Go(func() error {
			c.clearTable(ctx, logger, cc, p, t)
			return nil
		})
	}

	_ = g.Wait()
}

func (c *Copier) clearTable(ctx context.Context, logger *slog.Logger, cc *copyContext, p *pool.Pool, t TableDescriptor) {
	records := cc.recordsFor(t.Target)
	if len(records) == 0 {
		return
	}

	ks, ok := cc.keysFor(t.Target)
	if !ok {
		cc.update(t, func(r *TableResult) { r.DeleteFailed = len(records) })
		logger.ErrorContext(ctx, "data delete failed",
			"table", t.Target, "stage", cc.targetStage,
			"deleted", 0, "failed", len(records),
			"error", errors.ErrMissingPartitionKey)
		return
	}

	outcome, err := p.Run(ctx, len(records), func(ctx context.Context, i int) error {
		key, err := ks.KeyOf(records[i])
		if err != nil {
			return errors.NewTableError("delete", t.Target, err)
		}

		_, err = c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(t.Target),
			Key:       key,
		})
		if err != nil {
			return errors.NewTableError("delete", t.Target, err).WithMessage("key " + describeKey(key))
		}
		return nil
	})

	cc.update(t, func(r *TableResult) {
		r.Deleted = outcome.Succeeded
		r.DeleteFailed = len(records) - outcome.Succeeded
	})

	if err != nil {
		logger.ErrorContext(ctx, "data delete failed",
			"table", t.Target,
			"stage", cc.targetStage,
			"deleted", outcome.Succeeded,
			"failed", len(records)-outcome.Succeeded,
			"error", err,
		)
		return
	}

	logger.InfoContext(ctx, "records deleted",
		"count", outcome.Succeeded,
		"table", t.Target,
		"stage", cc.targetStage,
	)
}

// describeKey renders a primary key for log output.
func describeKey(key map[string]types.AttributeValue) string {
	var decoded map[string]any
	if err := attributevalue.UnmarshalMap(key, &decoded); err != nil {
		return fmt.Sprintf("%v", key)
	}
	return fmt.Sprintf("%v", decoded)
}
