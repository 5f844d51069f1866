// Package spacetimecli shells out to the external SpacetimeDB CLI that
// fronts the multiplayer coordination database. The database itself is
// external; this package only builds and executes CLI invocations.
package spacetimecli

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Database is the coordination module every call is addressed to.
const Database = "agent-coordination-v2"

type Runner struct {
	Bin     string
	Timeout time.Duration
}

// Call invokes a reducer on the coordination database and returns the
// combined output.
func (r Runner) Call(ctx context.Context, reducer string, args ...string) (string, error) {
	cliArgs := append([]string{"call", Database, reducer}, args...)
	return r.run(ctx, cliArgs...)
}

// Logs fetches the database log tail; used as a cheap connectivity
// probe.
func (r Runner) Logs(ctx context.Context) (string, error) {
	return r.run(ctx, "logs", Database)
}

func (r Runner) run(ctx context.Context, args ...string) (string, error) {
	bin := r.Bin
	if bin == "" {
		bin = "spacetime"
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s execution failed: %w (output: %s)", bin, err, string(out))
	}
	return string(out), nil
}
