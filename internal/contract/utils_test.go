package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	for _, band := range schema.AllBands {
		t.Run(string(band), func(t *testing.T) {
			assert.Equal(t, string(band), GetPlainLabel(band))
		})
	}

	t.Run("empty band", func(t *testing.T) {
		assert.Equal(t, string(schema.NoDataBand), GetPlainLabel(""))
	})
}

func TestGetColorLabel(t *testing.T) {
	for _, band := range schema.AllBands {
		t.Run(string(band), func(t *testing.T) {
			// Should contain the plain label
			assert.Contains(t, GetColorLabel(band), string(band))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".mfi_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	historyPath := GetHistoryDBFilePath()
	assert.Contains(t, historyPath, ".mfi_history.db")
	assert.NotEqual(t, cachePath, historyPath)
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{"short text", "Acme", 10, "Acme"},
		{"exact width", "Acme Mills", 10, "Acme Mills"},
		{"truncated", "Acme Mills Limited", 10, "Acme Mi..."},
		{"multibyte", "Société Générale", 8, "Socié..."},
		{"width too small", "Acme Mills", 3, "Acme Mills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.text, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(false, ""))
	require.NoError(t, InitLogger(true, JSONLogFormat))
	assert.Error(t, InitLogger(false, "xml"))
}
