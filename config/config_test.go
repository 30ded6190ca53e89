package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, ioutil.WriteFile(file, []byte("NFTEX_TEST_FROM_FILE=file\nNFTEX_TEST_PRESET=file\n"), 0o600))

	t.Setenv("ENV_FILE", file)
	t.Setenv("NFTEX_TEST_PRESET", "process")
	require.NoError(t, LoadEnv())
	defer os.Unsetenv("NFTEX_TEST_FROM_FILE")

	require.Equal(t, "file", os.Getenv("NFTEX_TEST_FROM_FILE"))
	require.Equal(t, "process", os.Getenv("NFTEX_TEST_PRESET"))

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	require.NoError(t, LoadEnv())
}

func TestNewLoggerService(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	NewLoggerService()
	require.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, Logger.Formatter)

	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("LOG_FORMAT", "")
	NewLoggerService()
	require.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, Logger.Formatter)
}
