package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/cwtrain/internal/csvlog"
	"github.com/verte-zerg/cwtrain/internal/model"
)

// JournalReader is the part of the journal a report reads.
type JournalReader interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListCharAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.CharAggregate, error)
	ListCharStatsForSessions(ctx context.Context, sessionIDs []string, chars []string) (map[string]map[string]model.CharAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	History  csvlog.History
	Problems []model.CharError

	Journal          []model.SessionAggregate
	WindowSessionIDs []string
	CharAggsWindow   []model.CharAggregate
	Chars            []string
	CharCurves       map[string]map[string]model.CharAggregate
}

// BuildReport reads the log at logPath, merges the live session when
// given, and adds journal data when journal is not nil. Since and Last
// bound the session list; character totals cover the whole log.
func BuildReport(ctx context.Context, logPath string, journal JournalReader, live *model.SessionRecord, cfg model.StatsConfig) (Report, error) {
	history, err := csvlog.ReadHistory(logPath)
	if err != nil {
		return Report{}, err
	}
	if live != nil {
		history.MergeLive(*live)
	}
	history.Sessions = filterSummaries(history.Sessions, cfg)
	report := Report{
		History:  history,
		Problems: history.ProblemChars(ProblemCharCount),
	}
	if journal == nil {
		return report, nil
	}

	sessions, err := journal.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list journal sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggsWindow, err := journal.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate journal chars: %w", err)
	}
	chars := ParseChars(cfg.Chars)
	if len(chars) == 0 {
		chars = TopCharsByFrequency(charAggsWindow, 3)
	}
	curves, err := journal.ListCharStatsForSessions(ctx, sessionIDs(sessions), chars)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load char curves: %w", err)
	}

	report.Journal = sessions
	report.WindowSessionIDs = windowIDs
	report.CharAggsWindow = charAggsWindow
	report.Chars = chars
	report.CharCurves = curves
	return report, nil
}

// RenderReport writes the full text report.
func RenderReport(w io.Writer, r Report, cfg model.StatsConfig, totalWidth int, useColor bool, now time.Time) error {
	if err := RenderSummary(w, r.History.Sessions, now); err != nil {
		return err
	}
	if err := RenderTrend(w, r.History.Sessions, cfg.CurveWindow, totalWidth, 0, useColor); err != nil {
		return err
	}
	if err := RenderProblemChars(w, r.Problems, totalWidth); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.History.Chars); err != nil {
		return err
	}
	if err := RenderJournalTable(w, r.CharAggsWindow); err != nil {
		return err
	}
	return RenderCharCurves(w, r.Journal, r.CharCurves, r.Chars, cfg.CurveWindow, totalWidth, 0, useColor)
}

func filterSummaries(sessions []model.SessionSummary, cfg model.StatsConfig) []model.SessionSummary {
	if cfg.Since != nil {
		kept := sessions[:0:0]
		for _, s := range sessions {
			if s.Live || !s.StartedAt.Before(*cfg.Since) {
				kept = append(kept, s)
			}
		}
		sessions = kept
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions
}

func sessionIDs(sessions []model.SessionAggregate) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []string {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
