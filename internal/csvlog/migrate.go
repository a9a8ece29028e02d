package csvlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Action is what Migrate did to the file.
type Action int

const (
	// ActionNone leaves a current-format file alone.
	ActionNone Action = iota
	// ActionFresh means the file is missing or empty and needs a header.
	ActionFresh
	// ActionBackup moved an old-format file aside.
	ActionBackup
	// ActionRepair rewrote the broken comma columns.
	ActionRepair
)

func (a Action) String() string {
	switch a {
	case ActionFresh:
		return "fresh"
	case ActionBackup:
		return "backup"
	case ActionRepair:
		return "repair"
	default:
		return "none"
	}
}

// Migration reports the outcome of Migrate.
type Migration struct {
	Action     Action
	BackupPath string
}

var brokenComma = []struct{ old, new string }{
	{",,_Total", ",COMMA_Total"},
	{",,_OK", ",COMMA_OK"},
	{",,_Err", ",COMMA_Err"},
}

// Inspect reports what Migrate would do without touching the file.
func (l *Log) Inspect() (Action, error) {
	header, err := readHeader(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return ActionFresh, nil
	}
	if err != nil {
		return ActionNone, fmt.Errorf("failed to read log header: %w", err)
	}
	switch {
	case header == "":
		return ActionFresh, nil
	case !strings.Contains(header, "A_Total"):
		return ActionBackup, nil
	case strings.Contains(header, ",,_Total"):
		return ActionRepair, nil
	default:
		return ActionNone, nil
	}
}

// Migrate brings an existing file to the current format. Files without
// per-character columns are renamed to a timestamped backup; headers with
// an empty comma label are repaired in place. Running it again on the
// result does nothing. Append calls it before each write.
func (l *Log) Migrate() (Migration, error) {
	action, err := l.Inspect()
	if err != nil {
		return Migration{}, err
	}
	switch action {
	case ActionBackup:
		backup := l.backupPath()
		if err := os.Rename(l.path, backup); err != nil {
			return Migration{}, fmt.Errorf("failed to back up old log: %w", err)
		}
		return Migration{Action: ActionBackup, BackupPath: backup}, nil
	case ActionRepair:
		if err := l.repair(); err != nil {
			return Migration{}, err
		}
	}
	return Migration{Action: action}, nil
}

func (l *Log) backupPath() string {
	ext := filepath.Ext(l.path)
	stem := strings.TrimSuffix(l.path, ext)
	return fmt.Sprintf("%s_backup_%s%s", stem, l.now().Format("20060102_150405"), ext)
}

func (l *Log) repair() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	for _, r := range brokenComma {
		data = bytes.ReplaceAll(data, []byte(r.old), []byte(r.new))
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(l.path), "statistics-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp log: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write repaired log: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close repaired log: %w", err)
	}
	if info, err := os.Stat(l.path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("failed to replace log: %w", err)
	}
	return nil
}

func readHeader(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
