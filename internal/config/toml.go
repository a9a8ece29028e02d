// Package config reads the TOML config file, applies environment
// overrides and resolves XDG paths.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Every field is a
// pointer so unset values can be told apart from zero values.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice" envPrefix:"PRACTICE_"`
	Link     LinkConfig     `toml:"link" envPrefix:"LINK_"`
	Audio    AudioConfig    `toml:"audio" envPrefix:"AUDIO_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
}

// PracticeConfig maps drill settings.
type PracticeConfig struct {
	Mode          *string  `toml:"mode" env:"MODE"`
	Direction     *string  `toml:"direction" env:"DIRECTION"`
	WPM           *int     `toml:"wpm" env:"WPM"`
	Tone          *int     `toml:"tone" env:"TONE"`
	ExtraSpacing  *int     `toml:"extra-spacing" env:"EXTRA_SPACING"`
	GroupSize     *int     `toml:"group-size" env:"GROUP_SIZE"`
	Chars         *string  `toml:"chars" env:"CHARS"`
	WordList      *string  `toml:"word-list" env:"WORD_LIST"`
	IgnoreSpacing *bool    `toml:"ignore-spacing" env:"IGNORE_SPACING"`
	ClientSpacing *bool    `toml:"client-spacing" env:"CLIENT_SPACING"`
	ShowSystem    *bool    `toml:"show-system" env:"SHOW_SYSTEM"`
	FocusWeak     *bool    `toml:"focus-weak" env:"FOCUS_WEAK"`
	WeakTop       *int     `toml:"weak-top" env:"WEAK_TOP"`
	WeakFactor    *float64 `toml:"weak-factor" env:"WEAK_FACTOR"`
	WeakWindow    *int     `toml:"weak-window" env:"WEAK_WINDOW"`
}

// LinkConfig maps the keyer serial link.
type LinkConfig struct {
	Port *string `toml:"port" env:"PORT"`
	Baud *int    `toml:"baud" env:"BAUD"`
}

// AudioConfig maps local playback.
type AudioConfig struct {
	Local    *bool    `toml:"local" env:"LOCAL"`
	Volume   *float64 `toml:"volume" env:"VOLUME"`
	Player   *string  `toml:"player" env:"PLAYER"`
	Sidetone *string  `toml:"sidetone" env:"SIDETONE"`
}

// LogConfig maps persisted files.
type LogConfig struct {
	Path    *string `toml:"path" env:"PATH"`
	Journal *string `toml:"journal" env:"JOURNAL"`
	File    *string `toml:"file" env:"FILE"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Load reads the file at path and applies CWTRAIN_* environment
// overrides on top of it.
func Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}
