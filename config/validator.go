package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

//go:embed schema.cue
var schemaSource string

// Validate checks the configuration against the CUE schema, then checks the
// rules that depend on the run mode.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return errors.NewError("config", errors.CodeInvalidConfig, fmt.Errorf("compile schema: %w", err))
	}

	value := schema.Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return errors.NewError("config", errors.CodeInvalidConfig, fmt.Errorf("invalid configuration: %w", err))
	}

	if c.AfterDeploy == "" {
		if c.SourceStage == "" || c.TargetStage == "" {
			return errors.NewError("config", errors.CodeInvalidConfig,
				fmt.Errorf("%w: --source-stage and --target-stage are required", errors.ErrInvalidRequest))
		}
		if c.SourceStage == c.TargetStage {
			return errors.NewError("config", errors.CodeInvalidConfig,
				fmt.Errorf("%w: source and target stage are both %q", errors.ErrInvalidRequest, c.SourceStage))
		}
	}
	return nil
}
