package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cwtrain/internal/link"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cwtrain configuration
# Uncomment a value to enable it. CWTRAIN_* environment variables override
# the file (e.g. CWTRAIN_PRACTICE_WPM=25) and CLI flags override both.

[practice]
# mode = %q            # words or groups
# direction = %q           # rx (listen) or tx (key)
# wpm = %d                   # Local playback speed
# tone = %d                 # Local tone in Hz
# extra-spacing = %d        # Extra spacing between characters in ms
# group-size = %d             # Characters per random group
# chars = "KMRSUAPTLOWI"      # Characters allowed in random groups
# word-list = "/path/to/words.txt"
# ignore-spacing = false
# client-spacing = false      # Pace drills one character at a time
# show-system = false         # Show device messages in the receive log
# focus-weak = false          # Bias drills toward weak characters
# weak-top = %d
# weak-factor = %.1f
# weak-window = %d

[link]
# port = "ttyUSB0"
# baud = %d

[audio]
# local = false               # Play drills through the local player
# volume = %.1f
# player = %q              # auto, aplay, pacat or ffplay
# sidetone = %q          # stream or bounded

[log]
# path = "statistics.csv"
# journal = "journal.db"
# file = "cwtrain.log"
`,
		defaultMode,
		defaultDirection,
		defaultWPM,
		defaultTone,
		defaultExtraSpacing,
		defaultGroupSize,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		link.DefaultBaud,
		defaultVolume,
		defaultPlayer,
		defaultSidetone,
	)
}
