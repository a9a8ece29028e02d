// Package main provides the CLI entrypoint for cwtrain.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cwtrain/internal/audio"
	"github.com/verte-zerg/cwtrain/internal/config"
	"github.com/verte-zerg/cwtrain/internal/csvlog"
	"github.com/verte-zerg/cwtrain/internal/link"
	"github.com/verte-zerg/cwtrain/internal/logging"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/morse"
	"github.com/verte-zerg/cwtrain/internal/store"
	"github.com/verte-zerg/cwtrain/internal/trainer"
	"github.com/verte-zerg/cwtrain/internal/tui"
	"github.com/verte-zerg/cwtrain/internal/wordlist"
)

const (
	defaultMode         = "groups"
	defaultDirection    = "rx"
	defaultWPM          = 20
	defaultTone         = 700
	defaultExtraSpacing = 500
	defaultGroupSize    = 5
	defaultVolume       = 1.0
	defaultPlayer       = "auto"
	defaultSidetone     = string(audio.SidetoneStream)
	defaultWeakTop      = 8
	defaultWeakFactor   = 2.0
	defaultWeakWindow   = 20
	defaultCurveWindow  = 10

	minWPM  = 5
	maxWPM  = 60
	minTone = 400
	maxTone = 1200
)

var configPath string

var (
	practiceMode          string
	practiceDirection     string
	practiceWPM           int
	practiceTone          int
	practiceExtraSpacing  int
	practiceGroupSize     int
	practiceChars         string
	practiceWordList      string
	practiceIgnoreSpacing bool
	practiceClientSpacing bool
	practiceShowSystem    bool
	practiceFocusWeak     bool
	practiceWeakTop       int
	practiceWeakFactor    float64
	practiceWeakWindow    int

	linkPort string
	linkBaud int

	audioLocal    bool
	audioVolume   float64
	audioPlayer   string
	audioSidetone string

	logPath     string
	journalPath string
	logFilePath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cwtrain",
		Short:         "Morse code keyer trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	flags := rootCmd.Flags()
	flags.StringVar(&practiceMode, "mode", defaultMode, "drill mode (words or groups)")
	flags.StringVar(&practiceDirection, "direction", defaultDirection, "drill direction (rx or tx)")
	flags.IntVar(&practiceWPM, "wpm", defaultWPM, "local playback speed")
	flags.IntVar(&practiceTone, "tone", defaultTone, "local tone frequency in Hz")
	flags.IntVar(&practiceExtraSpacing, "extra-spacing", defaultExtraSpacing, "extra spacing between characters in ms")
	flags.IntVar(&practiceGroupSize, "group-size", defaultGroupSize, "characters per random group")
	flags.StringVar(&practiceChars, "chars", "", "characters allowed in random groups")
	flags.StringVar(&practiceWordList, "word-list", "", "custom word list file")
	flags.BoolVar(&practiceIgnoreSpacing, "ignore-spacing", false, "ignore spaces when checking answers")
	flags.BoolVar(&practiceClientSpacing, "client-spacing", false, "pace drills one character at a time")
	flags.BoolVar(&practiceShowSystem, "show-system", false, "show device messages in the receive log")
	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias drills toward weak characters")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
	flags.StringVar(&linkPort, "port", "", "keyer serial port")
	flags.IntVar(&linkBaud, "baud", link.DefaultBaud, "serial baud rate")
	flags.BoolVar(&audioLocal, "local", false, "play drills through the local audio player")
	flags.Float64Var(&audioVolume, "volume", defaultVolume, "local volume (0-1)")
	flags.StringVar(&audioPlayer, "player", defaultPlayer, "audio player (auto, aplay, pacat, ffplay)")
	flags.StringVar(&audioSidetone, "sidetone", defaultSidetone, "sidetone mode (stream or bounded)")
	flags.StringVar(&logPath, "log", config.DefaultLogPath(), "session log CSV path")
	flags.StringVar(&journalPath, "journal", config.DefaultJournalPath(), "attempt journal path")
	flags.StringVar(&logFilePath, "log-file", config.DefaultStateLogPath(), "diagnostic log path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newMonitorCmd())
	rootCmd.AddCommand(newPortsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCheatsheetCmd())

	return rootCmd
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func applyPracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	p := fileCfg.Practice
	applyStringConfig(cmd, "mode", &practiceMode, p.Mode)
	applyStringConfig(cmd, "direction", &practiceDirection, p.Direction)
	applyIntConfig(cmd, "wpm", &practiceWPM, p.WPM)
	applyIntConfig(cmd, "tone", &practiceTone, p.Tone)
	applyIntConfig(cmd, "extra-spacing", &practiceExtraSpacing, p.ExtraSpacing)
	applyIntConfig(cmd, "group-size", &practiceGroupSize, p.GroupSize)
	applyStringConfig(cmd, "chars", &practiceChars, p.Chars)
	applyStringConfig(cmd, "word-list", &practiceWordList, p.WordList)
	applyBoolConfig(cmd, "ignore-spacing", &practiceIgnoreSpacing, p.IgnoreSpacing)
	applyBoolConfig(cmd, "client-spacing", &practiceClientSpacing, p.ClientSpacing)
	applyBoolConfig(cmd, "show-system", &practiceShowSystem, p.ShowSystem)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)

	applyStringConfig(cmd, "port", &linkPort, fileCfg.Link.Port)
	applyIntConfig(cmd, "baud", &linkBaud, fileCfg.Link.Baud)

	applyBoolConfig(cmd, "local", &audioLocal, fileCfg.Audio.Local)
	applyFloatConfig(cmd, "volume", &audioVolume, fileCfg.Audio.Volume)
	applyStringConfig(cmd, "player", &audioPlayer, fileCfg.Audio.Player)
	applyStringConfig(cmd, "sidetone", &audioSidetone, fileCfg.Audio.Sidetone)

	applyStringConfig(cmd, "log", &logPath, fileCfg.Log.Path)
	applyStringConfig(cmd, "journal", &journalPath, fileCfg.Log.Journal)
	applyStringConfig(cmd, "log-file", &logFilePath, fileCfg.Log.File)
}

func practiceConfig() model.Config {
	return model.Config{
		Mode:           normalizeMode(practiceMode),
		Direction:      strings.ToUpper(strings.TrimSpace(practiceDirection)),
		WPM:            practiceWPM,
		Tone:           practiceTone,
		ExtraSpacingMs: practiceExtraSpacing,
		GroupSize:      practiceGroupSize,
		AllowedChars:   strings.ToUpper(strings.TrimSpace(practiceChars)),
		IgnoreSpacing:  practiceIgnoreSpacing,
		ClientSpacing:  practiceClientSpacing,
		LocalAudio:     audioLocal,
		ShowSystem:     practiceShowSystem,
		Volume:         audioVolume,
		FocusWeak:      practiceFocusWeak,
		WeakTop:        practiceWeakTop,
		WeakFactor:     practiceWeakFactor,
		WeakWindow:     practiceWeakWindow,
	}
}

func normalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "words":
		return model.ModeWords
	case "groups":
		return model.ModeGroups
	default:
		return mode
	}
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyPracticeConfig(cmd, fileCfg)

	cfg := practiceConfig()
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if audioSidetone != string(audio.SidetoneStream) && audioSidetone != string(audio.SidetoneBounded) {
		return fmt.Errorf("--sidetone must be stream or bounded")
	}

	words, err := loadPracticeWords(practiceWordList, cfg.AllowedChars)
	if err != nil {
		return err
	}

	logger, err := logging.Open(logFilePath)
	if err != nil {
		logErrf("diagnostic log disabled: %v\n", err)
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			logErrf("failed to close diagnostic log: %v\n", cerr)
		}
	}()

	sessionLog := csvlog.New(logPath)
	if action, err := sessionLog.Inspect(); err != nil {
		return fmt.Errorf("failed to check session log: %w", err)
	} else if action == csvlog.ActionBackup {
		logErrf("Old-format session log %s will be backed up on the first save\n", logPath)
	} else if action == csvlog.ActionRepair {
		logErrf("Session log header in %s will be repaired on the first save\n", logPath)
	}

	opts := trainer.Options{
		Config: cfg,
		Words:  words,
		Log:    sessionLog,
		Logger: logger,
	}

	st, err := store.Open(journalPath)
	if err != nil {
		logErrf("attempt journal disabled: %v\n", err)
	} else {
		opts.Journal = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close journal: %v\n", cerr)
			}
		}()
	}

	opts.Player = newEngine(audioPlayer, audio.SidetoneMode(audioSidetone), cfg.Volume)

	bus := tui.NewBus()
	opts.Timer = bus.PacerTimer()
	tr := trainer.New(opts)

	if err := tr.LoadWeakChars(context.Background()); err != nil {
		logErrf("%v\n", err)
	} else if cfg.FocusWeak && len(tr.WeakChars()) == 0 {
		logErrln("no stats available for weak-char focus yet; using normal generator")
	}

	var keyer tui.Link
	if linkPort != "" {
		port, err := link.Open(linkPort, linkBaud)
		if err != nil {
			_ = tr.Dispatch(trainer.LinkFailed{Port: linkPort, Err: err})
		} else {
			keyer = port
			defer func() {
				if cerr := port.Close(); cerr != nil {
					logErrf("failed to close port: %v\n", cerr)
				}
			}()
		}
	}

	m := tui.NewModel(tr, bus, keyer)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

// newEngine builds the local audio engine. Without a player binary the
// engine discards audio so drills still run.
func newEngine(player string, sidetone audio.SidetoneMode, volume float64) *audio.Engine {
	var sink audio.Sink
	execSink, err := audio.NewExecSink(player)
	if err != nil {
		logErrf("local audio disabled: %v\n", err)
		sink = audio.DiscardSink{}
	} else {
		sink = execSink
	}
	return audio.NewEngine(sink, audio.WithVolume(volume), audio.WithSidetone(sidetone, audio.DefaultToneBound))
}

func loadPracticeWords(path, allowed string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	if allowed != "" {
		words = wordlist.Apply(words, wordlist.Within(allowed))
		if len(words) == 0 {
			return nil, fmt.Errorf("no words in %s use only %q", path, allowed)
		}
	}
	return words, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Mode != model.ModeWords && cfg.Mode != model.ModeGroups {
		return fmt.Errorf("--mode must be words or groups")
	}
	if cfg.Direction != model.DirectionRX && cfg.Direction != model.DirectionTX {
		return fmt.Errorf("--direction must be rx or tx")
	}
	if cfg.WPM < minWPM || cfg.WPM > maxWPM {
		return fmt.Errorf("--wpm must be between %d and %d", minWPM, maxWPM)
	}
	if cfg.Tone < minTone || cfg.Tone > maxTone {
		return fmt.Errorf("--tone must be between %d and %d", minTone, maxTone)
	}
	if cfg.ExtraSpacingMs < 0 {
		return fmt.Errorf("--extra-spacing must be >= 0")
	}
	if cfg.GroupSize <= 0 {
		return fmt.Errorf("--group-size must be > 0")
	}
	if cfg.AllowedChars != "" && !morse.Encodable(strings.ReplaceAll(cfg.AllowedChars, " ", "")) {
		return fmt.Errorf("--chars contains characters without a Morse code")
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return fmt.Errorf("--volume must be between 0 and 1")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := link.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				logErrln("No serial ports found.")
				return errors.New("no serial ports found")
			}
			for _, p := range ports {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
}

func newCheatsheetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cheatsheet",
		Short: "Print the Morse code table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeCheatsheet(cmd.OutOrStdout())
		},
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
