// Package executor launches the compiled builder and the project's output binary.
package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// ExecutionError reports a builder that could not be started or exited non-zero
type ExecutionError struct {
	Artifact string
	ExitCode int
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("builder failed to compile/run: %s exited with code %d", e.Artifact, e.ExitCode)
	}

	return fmt.Sprintf("builder failed to compile/run: %s: %v", e.Artifact, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Executor runs programs with inherited standard streams
type Executor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	execCommand func(name string, args ...string) *exec.Cmd
}

// New creates an executor wired to the process's standard streams
func New() *Executor {
	return &Executor{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		execCommand: exec.Command,
	}
}

// Execute runs the builder artifact in dir and waits for it.
// Any launch failure or non-zero exit is an *ExecutionError.
func (e *Executor) Execute(dir, artifact string, args []string) error {
	slog.Debug("executing builder", "artifact", artifact, "args", args)

	code, err := e.run(dir, artifact, args)
	if err != nil {
		return &ExecutionError{Artifact: artifact, ExitCode: -1, Err: err}
	}

	if code != 0 {
		return &ExecutionError{Artifact: artifact, ExitCode: code}
	}

	return nil
}

// Launch runs program in dir and returns its exit code. Only a failure to
// start the program is an error.
func (e *Executor) Launch(dir, program string, args []string) (int, error) {
	slog.Debug("running executable", "program", program, "args", args)

	code, err := e.run(dir, program, args)
	if err != nil {
		return -1, fmt.Errorf("failed to run %s: %w", program, err)
	}

	return code, nil
}

func (e *Executor) run(dir, program string, args []string) (int, error) {
	cmd := e.execCommand(program, args...)
	cmd.Dir = dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, err
}
