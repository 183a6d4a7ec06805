package harvest

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a harvest run. All values
// originate from Viper so the harvester can be configured via files, env
// vars, or CLI flags.
type Config struct {
	BaseURL           string
	UserAgent         string
	Headless          bool
	ProbeFirst        bool
	NavigationTimeout time.Duration
	MaxAttempts       int
	RetryBackoff      time.Duration
	PolitenessPause   time.Duration
	ScrollLimit       int
	ScrollSettle      time.Duration
	ScrollIncrement   int
	CommitEvery       int
	OutputDir         string
	CheckpointFile    string
	Batches           []Batch
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:           v.GetString("harvester.base_url"),
		UserAgent:         v.GetString("harvester.user_agent"),
		Headless:          v.GetBool("harvester.headless"),
		ProbeFirst:        v.GetBool("harvester.probe_first"),
		NavigationTimeout: v.GetDuration("harvester.navigation_timeout"),
		MaxAttempts:       v.GetInt("harvester.max_attempts"),
		RetryBackoff:      v.GetDuration("harvester.retry_backoff"),
		PolitenessPause:   v.GetDuration("harvester.politeness_pause"),
		ScrollLimit:       v.GetInt("harvester.scroll_limit"),
		ScrollSettle:      v.GetDuration("harvester.scroll_settle"),
		ScrollIncrement:   v.GetInt("harvester.scroll_increment"),
		CommitEvery:       v.GetInt("harvester.commit_every"),
		OutputDir:         v.GetString("harvester.output_dir"),
		CheckpointFile:    v.GetString("harvester.checkpoint_file"),
	}
	for _, b := range v.GetStringSlice("harvester.batches") {
		cfg.Batches = append(cfg.Batches, Batch(b))
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("harvester.base_url must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("harvester.user_agent must be set")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("harvester.navigation_timeout must be > 0")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("harvester.max_attempts must be > 0")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("harvester.retry_backoff must be >= 0")
	}
	if c.PolitenessPause < 0 {
		return fmt.Errorf("harvester.politeness_pause must be >= 0")
	}
	if c.ScrollLimit <= 0 {
		return fmt.Errorf("harvester.scroll_limit must be > 0")
	}
	if c.ScrollIncrement <= 0 {
		return fmt.Errorf("harvester.scroll_increment must be > 0")
	}
	if c.CommitEvery <= 0 {
		return fmt.Errorf("harvester.commit_every must be > 0")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("harvester.output_dir must be set")
	}
	if c.CheckpointFile == "" {
		return fmt.Errorf("harvester.checkpoint_file must be set")
	}
	return nil
}
