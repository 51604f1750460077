package copytables

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/sync/errgroup"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

// downloadAll scans every table of the run in one stage and stores the records.
func (c *Copier) downloadAll(ctx context.Context, logger *slog.Logger, cc *copyContext, d direction) error {
	var g errgroup.Group

	for _, t := range cc.tables {
		g.Go(func() error {
			name := cc.physical(t, d)

			records, err := c.scan(ctx, name)
			if err != nil {
				logger.ErrorContext(ctx, "failed to download records",
					"table", name, "stage", cc.stage(d), "error", err)
				return errors.NewTableError("scan", name, err)
			}

			cc.setRecords(t, d, records)
			logger.InfoContext(ctx, "records downloaded",
				"count", len(records),
				"table", name,
				"stage", cc.stage(d),
			)
			return nil
		})
	}

	return g.Wait()
}

// scan reads a whole table, following LastEvaluatedKey unless single page
// scanning is enabled.
func (c *Copier) scan(ctx context.Context, table string) ([]Record, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(table),
	}
	if c.consistentScan {
		input.ConsistentRead = aws.Bool(true)
	}

	if c.singlePageScan {
		out, err := c.api.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		return out.Items, nil
	}

	var records []Record
	paginator := dynamodb.NewScanPaginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Items...)
	}
	return records, nil
}
