// Package pipeline sequences a talon invocation: resolve the project root,
// check the build script against the cache record, recompile the builder
// when stale, and run it.
//
// The project root is threaded explicitly through every step; the process
// working directory is never changed.
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Norgate-AV/talon/internal/cache"
	"github.com/Norgate-AV/talon/internal/directory"
	"github.com/Norgate-AV/talon/internal/ui"
)

// OutputDirName is where the builder places the project's product
const OutputDirName = "build"

// Compiler builds the build script into the builder artifact
type Compiler interface {
	Toolchain() string
	Compile(dir, script, output string) error
}

// Executor runs the builder and the project's output
type Executor interface {
	Execute(dir, artifact string, args []string) error
	Launch(dir, program string, args []string) (int, error)
}

// Options configures a Pipeline
type Options struct {
	// WorkDir anchors relative paths and the default project search
	WorkDir string
	// GOOS selects the builder's executable name; defaults to runtime.GOOS
	GOOS string

	Compiler Compiler
	Executor Executor
	Printer  *ui.Printer

	// History enables recording builds in .talon/history.db
	History bool
}

type BuildOptions struct {
	Backtrack   bool
	Clean       bool
	Path        string
	ProfileArgs []string
}

// Result describes a build. It is returned even when the build fails, with
// State set to Aborted and the fields reached so far filled in.
type Result struct {
	Root        string
	OutputPath  string
	Fingerprint string
	Compiled    bool
	State       State
}

type Pipeline struct {
	resolver *directory.Resolver
	compiler Compiler
	executor Executor
	printer  *ui.Printer
	goos     string
	history  bool
	now      func() time.Time
}

func New(opts Options) *Pipeline {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	return &Pipeline{
		resolver: directory.NewResolver(opts.WorkDir),
		compiler: opts.Compiler,
		executor: opts.Executor,
		printer:  opts.Printer,
		goos:     goos,
		history:  opts.History,
		now:      time.Now,
	}
}

// Build resolves the project, recompiles the builder if build.cc changed,
// and runs the builder with the profile arguments
func (p *Pipeline) Build(opts BuildOptions) (res *Result, err error) {
	start := p.now()
	res = &Result{State: Resolving}

	defer func() {
		if err != nil {
			p.transition(res, Aborted)
		}

		if res.Fingerprint != "" {
			p.recordHistory(res, err == nil, p.now().Sub(start))
		}
	}()

	if opts.Clean {
		if cleanErr := p.Clean(opts.Backtrack, opts.Path); cleanErr != nil {
			slog.Warn("failed to clean directory before build", "error", cleanErr)
		}
	}

	root, err := p.resolver.Resolve(opts.Path, opts.Backtrack)
	if err != nil {
		return res, err
	}

	if !directory.HasBuildScript(root) {
		return res, fmt.Errorf("%w in path", directory.ErrNotFound)
	}

	res.Root = root
	res.OutputPath = filepath.Join(root, OutputDirName, filepath.Base(root))
	layout := cache.NewLayout(root, p.goos)

	if err := os.MkdirAll(layout.Dir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create cache directory: %s: %w", layout.Dir, err)
	}

	p.transition(res, CheckingCache)
	fingerprint, err := cache.Fingerprint(filepath.Join(root, directory.BuildScript))
	if err != nil {
		return res, err
	}

	res.Fingerprint = fingerprint
	slog.Debug("build script hash", "hash", fingerprint)

	if cache.IsStale(layout.Record, fingerprint) {
		p.transition(res, Compiling)
		p.printer.Step("compiling builder")

		output := filepath.Join(cache.DirName, filepath.Base(layout.Builder))
		if err := p.compiler.Compile(root, directory.BuildScript, output); err != nil {
			return res, err
		}

		res.Compiled = true

		p.transition(res, UpdatingCache)
		if err := cache.Persist(layout.Record, fingerprint); err != nil {
			return res, err
		}

		p.printer.Success("build script compilation finished")
	} else {
		p.printer.Success("using cached builder (no changes detected)")
	}

	p.transition(res, Executing)
	if err := p.executor.Execute(root, layout.Builder, opts.ProfileArgs); err != nil {
		return res, err
	}

	p.transition(res, Done)
	return res, nil
}

// Run builds the project and then runs its output with forward as arguments.
// The program's own exit status is not treated as a failure.
func (p *Pipeline) Run(opts BuildOptions, forward []string) error {
	res, err := p.Build(opts)
	if err != nil {
		return err
	}

	code, err := p.executor.Launch(res.Root, res.OutputPath, forward)
	if err != nil {
		return err
	}

	slog.Debug("program exited", "program", res.OutputPath, "code", code)
	return nil
}

// Clean removes the cache and build output directories of a project
func (p *Pipeline) Clean(backtrack bool, path string) error {
	slog.Debug("clean command called", "path", path, "backtrack", backtrack)

	root, err := p.resolver.Resolve(path, backtrack)
	if err != nil {
		return err
	}

	if !directory.HasBuildScript(root) {
		return fmt.Errorf("not inside of a talon project: %w", directory.ErrNotFound)
	}

	slog.Debug("cleaning root", "root", root)
	for _, name := range []string{cache.DirName, OutputDirName} {
		dir := filepath.Join(root, name)

		if _, err := os.Stat(dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return err
		}

		slog.Debug("removing", "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}

	return nil
}

func (p *Pipeline) transition(res *Result, next State) {
	slog.Debug("pipeline state", "from", res.State, "to", next)
	res.State = next
}
