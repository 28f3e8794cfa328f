package filewriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/logger"
)

func TestWriteFileAppends(t *testing.T) {
	dir := t.TempDir()
	fw, err := New(dir, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, fw.WriteFile("Temperature", "1", "26"))
	require.NoError(t, fw.WriteFile("Temperature", "2", "27"))

	data, err := os.ReadFile(filepath.Join(dir, "Temperature.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], ",1,26"))
	assert.True(t, strings.HasSuffix(lines[1], ",2,27"))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	fw, err := New(dir, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ipAddr.txt"), []byte("192.168.1.5"), 0644))

	contents, err := fw.ReadFile("ipAddr.txt")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5", contents)
}

func TestReadFileMissing(t *testing.T) {
	fw, err := New(t.TempDir(), logger.Discard())
	require.NoError(t, err)

	_, err = fw.ReadFile("absent.txt")
	assert.Error(t, err)
}

func TestNewCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := New(dir, logger.Discard())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
