package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/talon/internal/cache"
	"github.com/Norgate-AV/talon/internal/codes"
	"github.com/Norgate-AV/talon/internal/compiler"
	"github.com/Norgate-AV/talon/internal/directory"
	"github.com/Norgate-AV/talon/internal/executor"
	"github.com/Norgate-AV/talon/internal/ui"
)

type compileCall struct {
	dir, script, output string
}

type fakeCompiler struct {
	calls []compileCall
	err   error
}

func (f *fakeCompiler) Toolchain() string {
	return "clang"
}

func (f *fakeCompiler) Compile(dir, script, output string) error {
	f.calls = append(f.calls, compileCall{dir, script, output})
	if f.err != nil {
		return f.err
	}

	return os.WriteFile(filepath.Join(dir, output), []byte("builder"), 0o755)
}

type runCall struct {
	dir, program string
	args         []string
}

type fakeExecutor struct {
	executed  []runCall
	launched  []runCall
	execErr   error
	launchErr error
	exitCode  int
}

func (f *fakeExecutor) Execute(dir, artifact string, args []string) error {
	f.executed = append(f.executed, runCall{dir, artifact, args})
	return f.execErr
}

func (f *fakeExecutor) Launch(dir, program string, args []string) (int, error) {
	f.launched = append(f.launched, runCall{dir, program, args})
	return f.exitCode, f.launchErr
}

type harness struct {
	root     string
	out      *bytes.Buffer
	compiler *fakeCompiler
	executor *fakeExecutor
	pipeline *Pipeline
}

func newHarness(t *testing.T, script string) *harness {
	t.Helper()

	root := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.Mkdir(root, 0o755))
	if script != "" {
		writeScript(t, root, script)
	}

	h := &harness{
		root:     root,
		out:      &bytes.Buffer{},
		compiler: &fakeCompiler{},
		executor: &fakeExecutor{},
	}

	h.pipeline = New(Options{
		WorkDir:  root,
		GOOS:     "linux",
		Compiler: h.compiler,
		Executor: h.executor,
		Printer:  ui.NewPrinter(h.out, false),
		History:  true,
	})

	return h
}

func writeScript(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, directory.BuildScript), []byte(content), 0o644))
}

func (h *harness) record(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.root, ".talon", "build_cache.txt"))
	require.NoError(t, err)
	return string(data)
}

func TestBuild_NoBuildScript(t *testing.T) {
	h := newHarness(t, "")

	res, err := h.pipeline.Build(BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrNotFound)
	assert.Contains(t, err.Error(), "no build script found")
	assert.NotEqual(t, 0, codes.FromError(err))
	assert.Equal(t, Aborted, res.State)
	assert.Empty(t, h.compiler.calls)
	assert.NoDirExists(t, filepath.Join(h.root, ".talon"))
}

func TestBuild_CompilesThenUsesCache(t *testing.T) {
	h := newHarness(t, "A")

	res, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Equal(t, Done, res.State)
	assert.Equal(t, h.root, res.Root)
	assert.Equal(t, filepath.Join(h.root, "build", "app"), res.OutputPath)
	assert.Equal(t, cache.HashBytes([]byte("A")), res.Fingerprint)
	assert.Contains(t, h.out.String(), "build script compilation finished")

	require.Len(t, h.compiler.calls, 1)
	assert.Equal(t, compileCall{
		dir:    h.root,
		script: "build.cc",
		output: filepath.Join(".talon", "talon_build"),
	}, h.compiler.calls[0])

	h.out.Reset()
	res, err = h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	assert.False(t, res.Compiled)
	assert.Len(t, h.compiler.calls, 1, "second build must not recompile")
	assert.Contains(t, h.out.String(), "using cached builder")

	assert.Equal(t, cache.HashBytes([]byte("A")), h.record(t))
	assert.Len(t, h.executor.executed, 2)
}

func TestBuild_ContentChangeForcesRecompile(t *testing.T) {
	h := newHarness(t, "A")

	_, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)

	writeScript(t, h.root, "B")
	res, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Len(t, h.compiler.calls, 2)
	assert.Equal(t, cache.HashBytes([]byte("B")), h.record(t))

	// History isn't tracked, so going back recompiles too
	writeScript(t, h.root, "A")
	res, err = h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Len(t, h.compiler.calls, 3)
}

func TestBuild_CompileFailureKeepsRecord(t *testing.T) {
	h := newHarness(t, "A")
	h.compiler.err = &compiler.CompileError{
		ExitCode: 1,
		Stdout:   "1 error generated.",
		Stderr:   "build.cc:1:1: error: expected expression",
	}

	res, err := h.pipeline.Build(BuildOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected expression")
	assert.Contains(t, err.Error(), "1 error generated.")
	assert.Equal(t, codes.Compilation, codes.FromError(err))
	assert.Equal(t, Aborted, res.State)
	assert.NoFileExists(t, filepath.Join(h.root, ".talon", "build_cache.txt"))
	assert.Empty(t, h.executor.executed)

	// Next run retries compilation
	h.compiler.err = nil
	res, err = h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	assert.True(t, res.Compiled)
	assert.Len(t, h.compiler.calls, 2)
}

func TestBuild_BuilderFailure(t *testing.T) {
	h := newHarness(t, "A")
	h.executor.execErr = &executor.ExecutionError{Artifact: "talon_build", ExitCode: 1}

	res, err := h.pipeline.Build(BuildOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "builder failed to compile/run")
	assert.Equal(t, codes.Execution, codes.FromError(err))
	assert.Equal(t, Aborted, res.State)

	// Compilation itself succeeded, so the record is current
	assert.Equal(t, cache.HashBytes([]byte("A")), h.record(t))
}

func TestBuild_PersistFailure(t *testing.T) {
	h := newHarness(t, "A")
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, ".talon", "build_cache.txt", "blocker"), 0o755))

	_, err := h.pipeline.Build(BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cache.ErrPersist))
	assert.Equal(t, codes.CacheIO, codes.FromError(err))
	assert.Empty(t, h.executor.executed)
}

func TestBuild_ProfileArgsAndBuilderPath(t *testing.T) {
	h := newHarness(t, "A")

	_, err := h.pipeline.Build(BuildOptions{ProfileArgs: []string{"-release"}})
	require.NoError(t, err)

	require.Len(t, h.executor.executed, 1)
	assert.Equal(t, runCall{
		dir:     h.root,
		program: filepath.Join(h.root, ".talon", "talon_build"),
		args:    []string{"-release"},
	}, h.executor.executed[0])
}

func TestBuild_WindowsBuilderName(t *testing.T) {
	h := newHarness(t, "A")
	h.pipeline.goos = "windows"

	_, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(".talon", "talon_build.exe"), h.compiler.calls[0].output)
	assert.Equal(t, filepath.Join(h.root, ".talon", "talon_build.exe"), h.executor.executed[0].program)
}

func TestBuild_Backtrack(t *testing.T) {
	h := newHarness(t, "A")
	deep := filepath.Join(h.root, "src", "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	_, err := h.pipeline.Build(BuildOptions{Path: deep})
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrNotFound)

	res, err := h.pipeline.Build(BuildOptions{Path: deep, Backtrack: true})
	require.NoError(t, err)
	assert.Equal(t, h.root, res.Root)
}

func TestBuild_CleanFirst(t *testing.T) {
	h := newHarness(t, "A")

	_, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "build"), 0o755))

	res, err := h.pipeline.Build(BuildOptions{Clean: true})
	require.NoError(t, err)
	assert.True(t, res.Compiled, "clean build must recompile")
	assert.Len(t, h.compiler.calls, 2)
	assert.NoDirExists(t, filepath.Join(h.root, "build"))
}

func TestBuild_CleanFirstFailureIsWarning(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}

	h := newHarness(t, "A")
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "build"), []byte("not a dir"), 0o444))
	require.NoError(t, os.Chmod(h.root, 0o555))
	t.Cleanup(func() { os.Chmod(h.root, 0o755) })

	// Clean can't remove anything, the build proceeds and fails only at mkdir
	_, err := h.pipeline.Build(BuildOptions{Clean: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create cache directory")
}

func TestRun(t *testing.T) {
	h := newHarness(t, "A")
	h.executor.exitCode = 3

	err := h.pipeline.Run(BuildOptions{ProfileArgs: []string{"-release"}}, []string{"--port", "8080"})
	require.NoError(t, err, "the program's own exit status is ignored")

	require.Len(t, h.executor.launched, 1)
	assert.Equal(t, runCall{
		dir:     h.root,
		program: filepath.Join(h.root, "build", "app"),
		args:    []string{"--port", "8080"},
	}, h.executor.launched[0])
}

func TestRun_BuildFailureSkipsLaunch(t *testing.T) {
	h := newHarness(t, "A")
	h.executor.execErr = &executor.ExecutionError{Artifact: "talon_build", ExitCode: 1}

	err := h.pipeline.Run(BuildOptions{}, nil)
	require.Error(t, err)
	assert.Empty(t, h.executor.launched)
}

func TestRun_LaunchFailure(t *testing.T) {
	h := newHarness(t, "A")
	h.executor.launchErr = errors.New("failed to run app: no such file")

	err := h.pipeline.Run(BuildOptions{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run app")
}

func TestClean(t *testing.T) {
	h := newHarness(t, "A")

	_, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "build"), 0o755))

	require.NoError(t, h.pipeline.Clean(false, ""))
	assert.NoDirExists(t, filepath.Join(h.root, ".talon"))
	assert.NoDirExists(t, filepath.Join(h.root, "build"))
	assert.FileExists(t, filepath.Join(h.root, "build.cc"))

	// Nothing left to remove is fine
	require.NoError(t, h.pipeline.Clean(false, ""))
}

func TestClean_NotAProject(t *testing.T) {
	h := newHarness(t, "")

	err := h.pipeline.Clean(false, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestBuild_RecordsHistory(t *testing.T) {
	h := newHarness(t, "A")

	_, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	_, err = h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)

	info, err := h.pipeline.CacheInfo(false, "")
	require.NoError(t, err)
	assert.Equal(t, cache.Stats{Builds: 2, Compiles: 1}, info.Stats)
	require.NotNil(t, info.Last)
	assert.False(t, info.Last.Compiled)
	assert.True(t, info.Last.Success)
}

func TestBuild_HistoryDisabled(t *testing.T) {
	h := newHarness(t, "A")
	h.pipeline.history = false

	_, err := h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(h.root, ".talon", "history.db"))
}

func TestCacheInfo(t *testing.T) {
	h := newHarness(t, "A")

	info, err := h.pipeline.CacheInfo(false, "")
	require.NoError(t, err)
	assert.Equal(t, h.root, info.Root)
	assert.True(t, info.Stale)
	assert.False(t, info.BuilderPresent)
	assert.Empty(t, info.Recorded)
	assert.Nil(t, info.Last)
	assert.NoDirExists(t, filepath.Join(h.root, ".talon"), "inspecting must not create the cache")

	_, err = h.pipeline.Build(BuildOptions{})
	require.NoError(t, err)

	info, err = h.pipeline.CacheInfo(false, "")
	require.NoError(t, err)
	assert.False(t, info.Stale)
	assert.True(t, info.BuilderPresent)
	assert.Equal(t, info.Fingerprint, info.Recorded)
	assert.Equal(t, "clang", info.Last.Toolchain)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "resolving", Resolving.String())
	assert.Equal(t, "checking-cache", CheckingCache.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "aborted", Aborted.String())
	assert.Equal(t, "unknown", State(99).String())
}
