package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklendapp/booklend-server/internal/domain"
)

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "TEST_CONFIG_KEY", "default"))

	os.Unsetenv("TEST_CONFIG_KEY")
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_KEY", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "7")
	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT_KEY", 3))

	t.Setenv("TEST_INT_KEY", "not-a-number")
	assert.Equal(t, 3, getIntConfigValue("", "TEST_INT_KEY", 3))

	os.Unsetenv("TEST_INT_KEY")
	assert.Equal(t, 3, getIntConfigValue("", "TEST_INT_KEY", 3))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nTEST_ENVFILE_A=alpha\nTEST_ENVFILE_B=\"quoted\"\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	defer func() {
		os.Unsetenv("TEST_ENVFILE_A")
		os.Unsetenv("TEST_ENVFILE_B")
	}()

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "alpha", os.Getenv("TEST_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("TEST_ENVFILE_B"))
}

func TestLoadEnvFile_EnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_ENVFILE_C=file\n"), 0o600))
	t.Setenv("TEST_ENVFILE_C", "env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "env", os.Getenv("TEST_ENVFILE_C"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JUSTAKEY\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Environment: "development"},
			Logger: LoggerConfig{Level: "info"},
			Data:   DataConfig{BasePath: "/tmp/booklend"},
			Loans:  LoanConfig{MaxActive: domain.DefaultMaxActiveLoans, Period: domain.DefaultLoanPeriod},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.App.Environment = "testing"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Loans.MaxActive = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Loans.Period = -time.Hour
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/absolute/path", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", got)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)
}
