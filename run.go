package copytables

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
	"github.com/seldebrings/sls-copy-stack-tables/internal/pool"
)

// State is the position of a run in the copy pipeline.
type State string

const (
	StateIdle          State = "idle"
	StateKeysValidated State = "keys_validated"
	StateDownloaded    State = "downloaded"
	StateCleared       State = "cleared"
	StateUploaded      State = "uploaded"
	StateDone          State = "done"
	StateFailed        State = "failed"
	StateSkipped       State = "skipped"
)

// Request describes one copy run.
type Request struct {
	// SourceStage is the stage records are read from
	SourceStage string

	// TargetStage is the stage records are written to
	TargetStage string

	// OverwriteAllData deletes every existing target record before uploading
	OverwriteAllData bool

	// StageToken is the placeholder replaced by the stage in table names
	StageToken string

	// Tables are the logical table names to copy
	Tables []string
}

// Validate checks that the request can be executed without touching storage.
func (r Request) Validate() error {
	switch {
	case r.SourceStage == "":
		return errors.NewError("plan", errors.CodeInvalidInput,
			fmt.Errorf("%w: source stage is required", errors.ErrInvalidRequest))
	case r.TargetStage == "":
		return errors.NewError("plan", errors.CodeInvalidInput,
			fmt.Errorf("%w: target stage is required", errors.ErrInvalidRequest))
	case r.SourceStage == r.TargetStage:
		return errors.NewError("plan", errors.CodeInvalidInput,
			fmt.Errorf("%w: source and target stage are both %q", errors.ErrInvalidRequest, r.SourceStage))
	case r.StageToken == "":
		return errors.NewError("plan", errors.CodeInvalidInput,
			fmt.Errorf("%w: stage token is required", errors.ErrInvalidRequest))
	}

	var missing []string
	for _, table := range r.Tables {
		if !strings.Contains(table, r.StageToken) {
			missing = append(missing, strconv.Quote(table))
		}
	}
	if len(missing) > 0 {
		return errors.NewError("plan", errors.CodeInvalidConfig,
			fmt.Errorf("%w: tables %s do not contain stage token %q",
				errors.ErrInvalidRequest, strings.Join(missing, ", "), r.StageToken))
	}
	return nil
}

// TableResult holds the counters of one table.
type TableResult struct {
	Table          TableDescriptor
	SourceKeys     KeySchema
	TargetKeys     KeySchema
	Downloaded     int
	TargetExisting int
	Deleted        int
	DeleteFailed   int
	Uploaded       int
}

// Result summarises a run.
type Result struct {
	RunID    string
	State    State
	Tables   []TableResult
	Duration time.Duration

	// FailedIn is the last state reached before the failure
	FailedIn State
}

// ShouldRunAfterDeploy reports whether a deployment of deployedStage triggers req.
func ShouldRunAfterDeploy(deployedStage string, req Request) bool {
	return req.SourceStage != "" && req.TargetStage != "" && req.TargetStage == deployedStage
}

// RunAfterDeploy runs req only when deployedStage is its target stage.
// Otherwise it returns a skipped result without calling DynamoDB.
func (c *Copier) RunAfterDeploy(ctx context.Context, deployedStage string, req Request) (*Result, error) {
	if !ShouldRunAfterDeploy(deployedStage, req) {
		c.logger.InfoContext(ctx, "copy skipped",
			"deployed_stage", deployedStage,
			"source_stage", req.SourceStage,
			"target_stage", req.TargetStage,
		)
		return &Result{State: StateSkipped}, nil
	}
	return c.Run(ctx, req)
}

// Run copies every table of req from the source stage to the target stage.
//
// Key schemas are resolved for both stages, source and target tables are
// downloaded, the target is cleared when OverwriteAllData is set and finally the
// source records are uploaded. A failing stage stops the run; the returned
// Result carries the counters gathered so far.
func (c *Copier) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		RunID: uuid.NewString(),
		State: StateIdle,
	}

	if err := req.Validate(); err != nil {
		result.FailedIn = StateIdle
		result.State = StateFailed
		return result, err
	}

	logger := c.logger.With("run_id", result.RunID)
	cc := newCopyContext(req)
	p := pool.New(c.concurrency, c.writeRate)
	start := time.Now()

	logger.InfoContext(ctx, "copy started",
		"source_stage", req.SourceStage,
		"target_stage", req.TargetStage,
		"overwrite_all_data", req.OverwriteAllData,
		"tables", len(cc.tables),
	)

	stages := []struct {
		next State
		run  func() error
	}{
		{StateKeysValidated, func() error {
			if err := c.resolveKeys(ctx, logger, cc, fromSource); err != nil {
				return err
			}
			return c.resolveKeys(ctx, logger, cc, toTarget)
		}},
		{StateDownloaded, func() error {
			if err := c.downloadAll(ctx, logger, cc, fromSource); err != nil {
				return err
			}
			return c.downloadAll(ctx, logger, cc, toTarget)
		}},
		{StateCleared, func() error {
			c.clearTables(ctx, logger, cc, p)
			return nil
		}},
		{StateUploaded, func() error {
			return c.uploadAll(ctx, logger, cc, p)
		}},
	}

	for _, s := range stages {
		if err := s.run(); err != nil {
			result.FailedIn = result.State
			result.State = StateFailed
			result.Tables = cc.results()
			result.Duration = time.Since(start)

			logger.ErrorContext(ctx, "copy failed",
				"state", result.FailedIn,
				"duration", result.Duration,
				"error", err,
			)
			return result, err
		}
		result.State = s.next
	}

	result.State = StateDone
	result.Tables = cc.results()
	result.Duration = time.Since(start)

	logger.InfoContext(ctx, "copy completed",
		"tables", len(result.Tables),
		"duration", result.Duration,
	)
	return result, nil
}
