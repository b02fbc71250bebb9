package app_config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseServerAppConfig(t *testing.T) {
	path := writeConfig(t, `
LISTEN_ADDR: ":9000"
FRIEND_CHECK_CRON: "*/5 * * * *"
FRIEND_CHECK_ON_START: true
CORS_ALLOW_ORIGINS:
  - https://blog.example.com
`)
	c, err := ParseServerAppConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", c.LISTEN_ADDR)
	require.Equal(t, "*/5 * * * *", c.FRIEND_CHECK_CRON)
	require.True(t, c.FRIEND_CHECK_ON_START)
	require.Equal(t, []string{"https://blog.example.com"}, c.CORS_ALLOW_ORIGINS)
	// not in file, keep defaults
	require.Equal(t, DefaultFeedPageSize, c.FEED_PAGE_SIZE)
	require.Equal(t, int64(DefaultFriendCheckTimeoutMs), c.FRIEND_CHECK_TIMEOUT_MS)
}

func TestParseServerAppConfigInvalidValues(t *testing.T) {
	path := writeConfig(t, "FEED_PAGE_SIZE: -1\nFRIEND_CHECK_TIMEOUT_MS: 0\n")
	c, err := ParseServerAppConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultFeedPageSize, c.FEED_PAGE_SIZE)
	require.Equal(t, int64(DefaultFriendCheckTimeoutMs), c.FRIEND_CHECK_TIMEOUT_MS)
}

func TestParseServerAppConfigErrors(t *testing.T) {
	_, err := ParseServerAppConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = ParseServerAppConfig(writeConfig(t, "LISTEN_ADDR: [unclosed"))
	require.Error(t, err)
}
