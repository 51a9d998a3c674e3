package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, `# credentials for the QA user
FUSION_EMAIL=qa@turngreen.pt
export FUSION_PASSWORD="p=ss word"

BASE_URL='https://cms.example'
EMPTY=
`)

	values, err := LoadEnvFile(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"FUSION_EMAIL":    "qa@turngreen.pt",
		"FUSION_PASSWORD": "p=ss word",
		"BASE_URL":        "https://cms.example",
		"EMPTY":           "",
	}, values)
}

func TestLoadEnvFile_MissingFileIsEmpty(t *testing.T) {
	values, err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "GOOD=1\nnot a pair\n")

	_, err := LoadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
