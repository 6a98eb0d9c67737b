package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateTestDirectory returns an empty "photos" directory inside t.TempDir()
func CreateTestDirectory(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "photos")
	require.NoError(t, os.MkdirAll(path, 0755))
	return path
}

// CreateTestFile writes content to path, creating parent directories
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	assert.FileExists(t, path)
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	assert.NoFileExists(t, path)
}

// AssertFileContent fails unless path holds exactly expected
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expected, actual, "content of %s", path)
}

// AssertFileContains fails unless path contains substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), substring, "content of %s", path)
}

// CaptureOutput runs f with os.Stdout and os.Stderr redirected and returns
// what was written to each
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err)

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = wOut, wErr
	defer func() {
		os.Stdout, os.Stderr = origOut, origErr
	}()

	drain := func(r *os.File) <-chan string {
		ch := make(chan string, 1)
		go func() {
			b, _ := io.ReadAll(r)
			r.Close()
			ch <- string(b)
		}()
		return ch
	}
	outCh, errCh := drain(rOut), drain(rErr)

	f()

	wOut.Close()
	wErr.Close()
	return <-outCh, <-errCh
}
