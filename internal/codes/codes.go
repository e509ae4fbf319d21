package codes

import (
	"errors"

	"github.com/Norgate-AV/talon/internal/cache"
	"github.com/Norgate-AV/talon/internal/compiler"
	"github.com/Norgate-AV/talon/internal/directory"
	"github.com/Norgate-AV/talon/internal/executor"
)

// Process exit codes
const (
	Success     = 0
	Failure     = 1
	Resolution  = 2
	CacheIO     = 3
	Compilation = 4
	Execution   = 5
)

// ErrorCodes maps talon exit codes to their descriptions
var ErrorCodes = map[int]string{
	Success:     "Success",
	Failure:     "General failure",
	Resolution:  "Project not found",
	CacheIO:     "Cache could not be written",
	Compilation: "Build script failed to compile",
	Execution:   "Builder failed to run",
}

// FromError returns the exit code for err
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var compileErr *compiler.CompileError
	var execErr *executor.ExecutionError

	switch {
	case errors.As(err, &compileErr):
		return Compilation
	case errors.As(err, &execErr):
		return Execution
	case errors.Is(err, cache.ErrPersist):
		return CacheIO
	case errors.Is(err, directory.ErrNotFound), errors.Is(err, directory.ErrInvalidPath):
		return Resolution
	}

	return Failure
}

// IsSuccess returns true if the exit code indicates success
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
