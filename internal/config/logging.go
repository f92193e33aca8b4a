package config

import "slices"

// LogFormats lists the encodings accepted for category log files.
var LogFormats = []string{"json", "console"}

// LoggingConfig controls the per-category debug logs under DataDir/logs.
// Nothing is written unless DebugMode is set.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`
	Format     string          `yaml:"format" json:"format,omitempty"`
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"`
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"`
}

// IsCategoryEnabled reports whether category should get a log file. In debug
// mode a category is on unless the map turns it off.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	on, listed := c.Categories[category]
	return !listed || on
}

// validFormat reports whether Format is empty or a known encoding.
func (c *LoggingConfig) validFormat() bool {
	return c.Format == "" || slices.Contains(LogFormats, c.Format)
}
