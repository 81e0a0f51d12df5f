package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		if _, err := exec.LookPath("python"); err != nil {
			t.Skip("python not installed")
		}
	}
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_NotFound(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing.py"), time.Second)
	require.ErrorIs(t, err, ErrNotFound)

	var ze *zerr.Error
	require.True(t, errors.As(err, &ze))
	assert.Contains(t, ze.Metadata()["path"], "missing.py")
}

func TestRun_UnsupportedType(t *testing.T) {
	path := writeScript(t, "script.rb", "puts 1")
	_, err := Run(context.Background(), path, time.Second)
	require.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), ".rb")
}

func TestRun_InterpreterMissing(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = orig })

	path := writeScript(t, "app.js", "console.log(1)")
	_, err := Run(context.Background(), path, time.Second)
	assert.ErrorIs(t, err, ErrInterpreterMissing)
}

func TestRun_PythonSuccess(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "ok.py", "print('hello')\n")

	res, err := Run(context.Background(), path, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRun_PythonFailure(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "bad.py", "import definitely_not_a_module_xyz\n")

	res, err := Run(context.Background(), path, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotZero(t, res.ExitCode)
	assert.Contains(t, res.ErrorText(), "definitely_not_a_module_xyz")
}

func TestRun_Timeout(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "slow.py", "import time\ntime.sleep(30)\n")

	_, err := Run(context.Background(), path, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestResult_ErrorText(t *testing.T) {
	assert.Equal(t, "boom", Result{Stderr: "  boom\n", Stdout: "out"}.ErrorText())
	assert.Equal(t, "out", Result{Stderr: " \n", Stdout: "out\n"}.ErrorText())
	assert.Equal(t, UnknownError, Result{}.ErrorText())
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.py"))
	assert.True(t, Supported("A.JS"))
	assert.True(t, Supported("x.mjs"))
	assert.False(t, Supported("x.ts"))
	assert.False(t, Supported("Makefile"))
}
