package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile_RedactsPanicValue(t *testing.T) {
	dir := t.TempDir()
	InstallCrashHandler(dir, func(s string) string {
		return strings.ReplaceAll(s, "hunter2", "********")
	})
	t.Cleanup(func() {
		crashMu.Lock()
		crashDir, crashRedact = "./logs", func(s string) string { return s }
		crashMu.Unlock()
	})

	path := WriteCrashFile("fill failed for hunter2", GetStackTrace())
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TURNGREEN-E2E CRASH REPORT")
	assert.Contains(t, string(data), "fill failed for ********")
	assert.NotContains(t, string(data), "hunter2")
}
