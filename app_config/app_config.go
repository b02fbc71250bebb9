package app_config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultListenAddr           = ":8080"
	DefaultFriendCheckCron      = "0 */6 * * *"
	DefaultFriendCheckTimeoutMs = 10000
	DefaultFeedPageSize         = 20
)

// This is the app config for the api server. Secrets live in env, see
// utils/dotenv.
type ServerAppConfig struct {
	// Address gin listens on.
	LISTEN_ADDR string `yaml:"LISTEN_ADDR"`
	// Standard 5 field cron expression of the friend health check.
	FRIEND_CHECK_CRON string `yaml:"FRIEND_CHECK_CRON"`
	// Per friend probe timeout.
	FRIEND_CHECK_TIMEOUT_MS int64 `yaml:"FRIEND_CHECK_TIMEOUT_MS"`
	// Run one friend health check right after start up.
	FRIEND_CHECK_ON_START bool `yaml:"FRIEND_CHECK_ON_START"`
	// Default page size of the feed listing.
	FEED_PAGE_SIZE int `yaml:"FEED_PAGE_SIZE"`
	// Origins allowed by CORS. Empty allows all origins.
	CORS_ALLOW_ORIGINS []string `yaml:"CORS_ALLOW_ORIGINS"`
}

// Default returns the config used when no file is given.
func Default() ServerAppConfig {
	return ServerAppConfig{
		LISTEN_ADDR:             DefaultListenAddr,
		FRIEND_CHECK_CRON:       DefaultFriendCheckCron,
		FRIEND_CHECK_TIMEOUT_MS: DefaultFriendCheckTimeoutMs,
		FEED_PAGE_SIZE:          DefaultFeedPageSize,
	}
}

// ParseServerAppConfig reads the yaml file at path. Fields missing from the
// file keep their defaults.
func ParseServerAppConfig(path string) (ServerAppConfig, error) {
	c := Default()
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "fail to read app config %s", path)
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrapf(err, "fail to unmarshal app config %s", path)
	}
	if c.FEED_PAGE_SIZE <= 0 {
		c.FEED_PAGE_SIZE = DefaultFeedPageSize
	}
	if c.FRIEND_CHECK_TIMEOUT_MS <= 0 {
		c.FRIEND_CHECK_TIMEOUT_MS = DefaultFriendCheckTimeoutMs
	}
	return c, nil
}
