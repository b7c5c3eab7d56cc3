package raster

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner executes an external command. It exists so tests can stub out the
// pdftoppm invocation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}
