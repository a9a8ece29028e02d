package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cwtrain/internal/audio"
	"github.com/verte-zerg/cwtrain/internal/link"
	"github.com/verte-zerg/cwtrain/internal/morse"
)

var (
	playWPM          int
	playTone         int
	playExtraSpacing int
	playVolume       float64
	playPlayer       string
	playWAV          string

	monitorPort string
	monitorBaud int
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <text>...",
		Short: "Play text as Morse code or write it to a WAV file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlayCmd,
	}
	cmd.Flags().IntVar(&playWPM, "wpm", defaultWPM, "speed in words per minute")
	cmd.Flags().IntVar(&playTone, "tone", defaultTone, "tone frequency in Hz")
	cmd.Flags().IntVar(&playExtraSpacing, "extra-spacing", 0, "extra spacing between characters in ms")
	cmd.Flags().Float64Var(&playVolume, "volume", defaultVolume, "volume (0-1)")
	cmd.Flags().StringVar(&playPlayer, "player", defaultPlayer, "audio player (auto, aplay, pacat, ffplay)")
	cmd.Flags().StringVar(&playWAV, "wav", "", "write a WAV file instead of playing")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "wpm", &playWPM, fileCfg.Practice.WPM)
	applyIntConfig(cmd, "tone", &playTone, fileCfg.Practice.Tone)
	applyFloatConfig(cmd, "volume", &playVolume, fileCfg.Audio.Volume)
	applyStringConfig(cmd, "player", &playPlayer, fileCfg.Audio.Player)

	text := strings.ToUpper(strings.Join(args, " "))
	if !morse.Encodable(text) {
		return fmt.Errorf("text contains characters without a Morse code: %q", text)
	}
	if playVolume < 0 || playVolume > 1 {
		return fmt.Errorf("--volume must be between 0 and 1")
	}

	r := audio.Renderer{Format: audio.DefaultFormat, Volume: playVolume}
	samples, err := r.Render(text, playWPM, playTone, playExtraSpacing)
	if err != nil {
		return fmt.Errorf("failed to render %q: %w", text, err)
	}

	if playWAV != "" {
		if err := writeWAVFile(playWAV, r.Format, samples); err != nil {
			return err
		}
		logErrf("Wrote %s (%.1fs)\n", playWAV, float64(len(samples))/float64(r.Format.SampleRate*r.Format.Channels))
		return nil
	}

	sink, err := audio.NewExecSink(playPlayer)
	if err != nil {
		return err
	}
	pb, err := sink.Start(r.Format, bytes.NewReader(audio.SamplesToBytes(samples)))
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	select {
	case <-pb.Done():
		return nil
	case <-ctx.Done():
		if err := pb.Stop(); err != nil {
			return fmt.Errorf("failed to stop playback: %w", err)
		}
		return nil
	}
}

func writeWAVFile(path string, f audio.Format, samples []int16) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(out)
	if err := audio.WriteWAV(w, f, samples); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print decoded text and device messages from the keyer",
		Args:  cobra.NoArgs,
		RunE:  runMonitorCmd,
	}
	cmd.Flags().StringVar(&monitorPort, "port", "", "keyer serial port")
	cmd.Flags().IntVar(&monitorBaud, "baud", link.DefaultBaud, "serial baud rate")
	return cmd
}

func runMonitorCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "port", &monitorPort, fileCfg.Link.Port)
	applyIntConfig(cmd, "baud", &monitorBaud, fileCfg.Link.Baud)
	if monitorPort == "" {
		return fmt.Errorf("no port selected (use --port, see: cwtrain ports)")
	}

	port, err := link.Open(monitorPort, monitorBaud)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			logErrf("failed to close port: %v\n", cerr)
		}
	}()
	logErrf("Listening on %s at %d baud, ctrl+c to stop\n", port.Name(), monitorBaud)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = port.Close()
	}()

	var dec link.Decoder
	out := cmd.OutOrStdout()
	err = port.Pump(ctx, func(b []byte) {
		for _, line := range dec.Feed(b).Lines {
			writeMonitorLine(out, time.Now(), line)
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func writeMonitorLine(w io.Writer, at time.Time, line string) {
	st := link.ParseStatus(line)
	prefix := "rx "
	if st.System() {
		prefix = "sys"
	}
	_, _ = fmt.Fprintf(w, "%s %s %s\n", at.Format("15:04:05"), prefix, line)
}

func writeCheatsheet(w io.Writer) error {
	entries := morse.Entries()
	const cols = 4
	rows := (len(entries) + cols - 1) / cols
	for row := 0; row < rows; row++ {
		var b strings.Builder
		for col := 0; col < cols; col++ {
			i := col*rows + row
			if i >= len(entries) {
				break
			}
			e := entries[i]
			fmt.Fprintf(&b, "%-3s %-8s", string(e.Char), e.Pattern())
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
