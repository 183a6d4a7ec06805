// Package config initializes the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitConfig initializes the application's configuration using Viper. It sets
// up default values, defines configuration search paths, and enables reading
// from environment variables. Call once at startup before loading any typed
// configuration.
func InitConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/harvester/")
	viper.AddConfigPath("$HOME/.harvester")

	const defaultUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	viper.SetDefault("harvester.base_url", "https://www.ycombinator.com")
	viper.SetDefault("harvester.user_agent", defaultUA)
	viper.SetDefault("harvester.headless", true)
	viper.SetDefault("harvester.probe_first", true)
	viper.SetDefault("harvester.navigation_timeout", "45s")
	viper.SetDefault("harvester.max_attempts", 2)
	viper.SetDefault("harvester.retry_backoff", "3s")
	viper.SetDefault("harvester.politeness_pause", "500ms")
	viper.SetDefault("harvester.scroll_limit", 20)
	viper.SetDefault("harvester.scroll_settle", "2s")
	viper.SetDefault("harvester.scroll_increment", 2000)
	viper.SetDefault("harvester.commit_every", 1)
	viper.SetDefault("harvester.output_dir", "data/harvest")
	viper.SetDefault("harvester.checkpoint_file", "harvest_progress.json")

	viper.SetDefault("sinks.json.enabled", true)
	viper.SetDefault("sinks.json.path", "founders.json")
	viper.SetDefault("sinks.xlsx.enabled", true)
	viper.SetDefault("sinks.xlsx.path", "founders.xlsx")
	viper.SetDefault("sinks.notion.enabled", false)
	viper.SetDefault("sinks.notion.token", "")
	viper.SetDefault("sinks.notion.database", "")
	viper.SetDefault("sinks.ftp.enabled", false)
	viper.SetDefault("sinks.ftp.addr", "")
	viper.SetDefault("sinks.ftp.user", "")
	viper.SetDefault("sinks.ftp.password", "")
	viper.SetDefault("sinks.ftp.remote_path", "founders.json")
	viper.SetDefault("sinks.ftp.timeout", "30s")
	viper.SetDefault("sinks.gcs.enabled", false)
	viper.SetDefault("sinks.gcs.bucket", "")
	viper.SetDefault("sinks.gcs.object", "snapshots/founders.json")
	viper.SetDefault("sinks.postgres.enabled", false)
	viper.SetDefault("sinks.postgres.dsn", "")
	viper.SetDefault("sinks.postgres.table", "founders")

	viper.SetDefault("publisher.project", "")
	viper.SetDefault("publisher.topic", "")
	viper.SetDefault("status.addr", "")

	viper.SetEnvPrefix("HARVESTER") // e.g. HARVESTER_SINKS_NOTION_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Defaults and environment variables are enough to run.
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}
