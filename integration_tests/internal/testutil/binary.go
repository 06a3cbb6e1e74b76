package testutil

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// BinaryPath returns the windmill binary used by the integration tests,
// looking in the current directory, the repository root and bin/.
func BinaryPath() string {
	for _, p := range []string{"windmill", filepath.Join("..", "windmill"), filepath.Join("..", "bin", "windmill")} {
		if _, err := os.Stat(p); err == nil {
			abs, err := filepath.Abs(p)
			if err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// Result is the outcome of one binary invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the binary in dir and waits at most a minute for it.
func Run(t *testing.T, dir string, args ...string) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, BinaryPath(), args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "LOG_FORMAT=text")

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run %s: %v", BinaryPath(), err)
	}
	return res
}
