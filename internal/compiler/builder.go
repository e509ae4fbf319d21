package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CompileError carries the compiler's captured output verbatim
type CompileError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CompileError) Error() string {
	var b strings.Builder

	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, "compilation failed (exit code %d)", e.ExitCode)
	} else {
		fmt.Fprintf(&b, "compilation failed: %v", e.Err)
	}

	if s := strings.TrimRight(e.Stderr, "\r\n"); s != "" {
		b.WriteString("\n--- stderr ---\n")
		b.WriteString(s)
	}

	if s := strings.TrimRight(e.Stdout, "\r\n"); s != "" {
		b.WriteString("\n--- stdout ---\n")
		b.WriteString(s)
	}

	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// CommandBuilder runs a toolchain's compiler command
type CommandBuilder struct {
	toolchain   Toolchain
	execCommand func(name string, args ...string) *exec.Cmd
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder(toolchain Toolchain) *CommandBuilder {
	return &CommandBuilder{
		toolchain:   toolchain,
		execCommand: exec.Command,
	}
}

func (cb *CommandBuilder) Toolchain() string {
	return cb.toolchain.Name()
}

// Compile builds script into output, running the compiler inside dir.
// A failed compile may leave a partial output file behind.
func (cb *CommandBuilder) Compile(dir, script, output string) error {
	sc := cb.toolchain.Command(script, output)
	slog.Debug("executing compiler", "toolchain", cb.toolchain.Name(), "command", sc.String(), "dir", dir)

	var stdout, stderr bytes.Buffer
	c := cb.execCommand(sc.Path, sc.Args...)
	c.Dir = dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()

	if stdout.Len() > 0 {
		slog.Debug("compiler stdout", "output", stdout.String())
	}

	if stderr.Len() > 0 {
		slog.Debug("compiler stderr", "output", stderr.String())
	}

	if err != nil {
		compileErr := &CompileError{
			Command:  sc.String(),
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			compileErr.ExitCode = exitErr.ExitCode()
		}

		return compileErr
	}

	return nil
}
