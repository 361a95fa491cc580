package sysctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is reported as *CommandError
// carrying the command's stderr; a binary that cannot be found wraps
// ErrToolNotFound.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return stdout.Bytes(), &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	case errors.Is(err, exec.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrToolNotFound, err)
	default:
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
}

// CommandStore accesses kernel parameters by shelling out to sysctl(8).
type CommandStore struct {
	path   string
	runner Runner
}

// NewCommandStore creates a store that invokes the sysctl binary at path.
// A nil runner uses ExecRunner.
func NewCommandStore(path string, runner Runner) *CommandStore {
	if path == "" {
		path = DefaultToolPath
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CommandStore{path: path, runner: runner}
}

// Read runs "sysctl <key>" and returns its output.
func (s *CommandStore) Read(ctx context.Context, key string) (string, error) {
	out, err := s.runner.Run(ctx, s.path, key)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Write runs "sysctl -w <key>=<value>".
func (s *CommandStore) Write(ctx context.Context, key, value string) error {
	_, err := s.runner.Run(ctx, s.path, "-w", key+"="+value)
	return err
}

// Path returns the sysctl binary the store invokes.
func (s *CommandStore) Path() string {
	return s.path
}
