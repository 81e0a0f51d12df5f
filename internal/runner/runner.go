// Package runner executes a Python or JavaScript file and captures its output
// so that a failing run can be explained.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// DefaultTimeout bounds a single run.
const DefaultTimeout = 30 * time.Second

// UnknownError is the text explained when a failed run printed nothing.
const UnknownError = "Unknown error occurred while running the file"

var (
	ErrNotFound           = errors.New("file not found")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrInterpreterMissing = errors.New("interpreter not found")
	ErrTimeout            = errors.New("execution timed out")
)

// interpreters maps a file extension to candidate interpreter binaries, tried
// in order.
var interpreters = map[string][]string{
	".py":  {"python3", "python"},
	".js":  {"node"},
	".mjs": {"node"},
}

// lookPath is exec.LookPath, replaced in tests.
var lookPath = exec.LookPath

// Result is the outcome of a completed run.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// ErrorText returns the text to explain for a failed run: stderr, else
// stdout, else UnknownError.
func (r Result) ErrorText() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	return UnknownError
}

// Supported reports whether path has an extension Run can execute.
func Supported(path string) bool {
	_, ok := interpreters[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Run executes path with the interpreter for its extension. A non-zero exit
// is not an error: it is reported through Result. Errors are returned only
// when the file could not be run to completion.
func Run(ctx context.Context, path string, timeout time.Duration) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{}, zerr.With(zerr.Wrap(ErrNotFound, "cannot run file"), "path", path)
		}
		return Result{}, zerr.With(zerr.Wrap(err, "cannot run file"), "path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	candidates, ok := interpreters[ext]
	if !ok {
		return Result{}, zerr.With(
			zerr.Wrap(ErrUnsupportedType, fmt.Sprintf("%q: only .py, .js and .mjs files are supported", ext)),
			"path", path)
	}

	bin, err := findInterpreter(candidates)
	if err != nil {
		return Result{}, zerr.With(err, "ext", ext)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, zerr.With(
			zerr.Wrap(ErrTimeout, fmt.Sprintf("after %s", timeout)),
			"path", path)
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, zerr.With(zerr.Wrap(err, "error running file"), "path", path)
		}
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.Success = true
	return res, nil
}

func findInterpreter(candidates []string) (string, error) {
	for _, name := range candidates {
		if p, err := lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", zerr.With(ErrInterpreterMissing, "tried", strings.Join(candidates, ", "))
}
