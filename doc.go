// Package copytables copies the contents of a deployment's DynamoDB tables
// from one stage to another.
//
// A copy run resolves the key schema of every table in both stages, scans the
// source and target tables, optionally deletes every existing target item and
// finally writes every source item into the target table. Tables are processed
// concurrently within each stage; item writes and deletes share a bounded
// worker pool.
//
// Table names are stage independent templates: the stage token (for example
// "${stage}" or the value of custom.stage in serverless.yml) is replaced by the
// source or target stage to obtain the physical table name.
//
// Example usage:
//
//	copier, err := copytables.New(ctx,
//	    copytables.WithRegion("eu-west-1"),
//	    copytables.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := copier.Run(ctx, copytables.Request{
//	    SourceStage:      "dev",
//	    TargetStage:      "prod",
//	    OverwriteAllData: true,
//	    StageToken:       "${stage}",
//	    Tables:           []string{"users-${stage}"},
//	})
package copytables
