package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testToken := "123456:test-token"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nTELEGRAM_TOKEN=%s\n",
		testAppName, testPort, testLogLevel, testToken,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testToken, cfg.Telegram.Token)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, []string{"amount", "date", "reference", "sender"}, cfg.Session.RequiredFields)
	assert.Equal(t, "Asia/Manila", cfg.Session.Timezone)
	assert.Equal(t, 4, cfg.WorkerPool.Size)

	cfgWithName, err := LoadConfigWithName("configs/test_happy") // Viper will look for configs/test_happy.env
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_MissingTelegramToken(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test_invalid")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// No config file and no TELEGRAM_TOKEN in the environment
	os.Unsetenv("TELEGRAM_TOKEN")

	cfg, err := LoadConfig("does_not_exist")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN is required")
}

func TestSplitFields(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"Simple", "amount,date", []string{"amount", "date"}},
		{"Spaces", " amount , date , sender ", []string{"amount", "date", "sender"}},
		{"TrailingComma", "amount,date,", []string{"amount", "date"}},
		{"Empty", "", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, splitFields(tc.raw))
		})
	}
}
