package bench

import (
	"context"
	"os/exec"
)

// Invoker runs one external target in a proof directory. The exit
// status is the only thing the scheduler cares about: a nil error is a
// successful run, anything else (non-zero exit, failed spawn) is a
// failed one. Tests substitute stub invokers for make.
type Invoker interface {
	Run(ctx context.Context, dir, target string) error
}

// MakeInvoker shells out to make. The child's stdin, stdout and stderr
// are all discarded: proof logs can be gigabytes and the timing must
// not depend on us draining them.
type MakeInvoker struct {
	Binary string
}

func NewMakeInvoker(binary string) MakeInvoker {
	if binary == "" {
		binary = "make"
	}
	return MakeInvoker{Binary: binary}
}

func (m MakeInvoker) Run(ctx context.Context, dir, target string) error {
	cmd := exec.CommandContext(ctx, m.Binary, target)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}
