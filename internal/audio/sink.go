package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Players tried, in order, when the player is "auto".
var Players = []string{"aplay", "pacat", "ffplay"}

// ErrNoPlayer means no supported player binary was found.
var ErrNoPlayer = errors.New("no audio player found")

// ExecSink pipes PCM into an external player process.
type ExecSink struct {
	player string
	path   string
}

// NewExecSink resolves player ("auto", "aplay", "pacat" or "ffplay").
func NewExecSink(player string) (*ExecSink, error) {
	player = strings.TrimSpace(strings.ToLower(player))
	candidates := Players
	if player != "" && player != "auto" {
		if _, ok := playerArgs(player, DefaultFormat); !ok {
			return nil, fmt.Errorf("unsupported player %q", player)
		}
		candidates = []string{player}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return &ExecSink{player: name, path: path}, nil
		}
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrNoPlayer, strings.Join(candidates, ", "))
}

// Player returns the resolved player name.
func (s *ExecSink) Player() string {
	return s.player
}

// Supports reports true; all players resample raw input.
func (s *ExecSink) Supports(f Format) bool {
	return f.valid()
}

// Preferred returns the default format.
func (s *ExecSink) Preferred() Format {
	return DefaultFormat
}

// Start launches the player reading pcm from stdin.
func (s *ExecSink) Start(f Format, pcm io.Reader) (Playback, error) {
	args, _ := playerArgs(s.player, f)
	cmd := exec.Command(s.path, args...)
	cmd.Stdin = pcm
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.player, err)
	}
	pb := &execPlayback{cmd: cmd, pcm: pcm, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(pb.done)
	}()
	return pb, nil
}

func playerArgs(player string, f Format) ([]string, bool) {
	rate := strconv.Itoa(f.SampleRate)
	ch := strconv.Itoa(f.Channels)
	switch player {
	case "aplay":
		return []string{"-q", "-t", "raw", "-f", "S16_LE", "-r", rate, "-c", ch, "-"}, true
	case "pacat":
		return []string{"--playback", "--raw", "--format=s16le", "--rate=" + rate, "--channels=" + ch}, true
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "error", "-f", "s16le", "-ar", rate, "-ac", ch, "-i", "pipe:0"}, true
	default:
		return nil, false
	}
}

type execPlayback struct {
	cmd  *exec.Cmd
	pcm  io.Reader
	done chan struct{}
	once sync.Once
}

func (p *execPlayback) Stop() error {
	var err error
	p.once.Do(func() {
		if c, ok := p.pcm.(io.Closer); ok {
			_ = c.Close()
		}
		select {
		case <-p.done:
			return
		default:
		}
		if p.cmd.Process != nil {
			err = p.cmd.Process.Kill()
		}
		<-p.done
	})
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execPlayback) Done() <-chan struct{} {
	return p.done
}

// DiscardSink drains PCM without playing it. Used with --player none.
type DiscardSink struct{}

func (DiscardSink) Supports(f Format) bool { return f.valid() }

func (DiscardSink) Preferred() Format { return DefaultFormat }

func (DiscardSink) Start(_ Format, pcm io.Reader) (Playback, error) {
	pb := &discardPlayback{done: make(chan struct{}), stop: make(chan struct{})}
	go func() {
		defer close(pb.done)
		if _, endless := pcm.(*ToneStream); endless {
			<-pb.stop
			return
		}
		buf := make([]byte, 4096)
		for {
			select {
			case <-pb.stop:
				return
			default:
			}
			if _, err := pcm.Read(buf); err != nil {
				return
			}
		}
	}()
	if c, ok := pcm.(io.Closer); ok {
		pb.closer = c
	}
	return pb, nil
}

type discardPlayback struct {
	done   chan struct{}
	stop   chan struct{}
	closer io.Closer
	once   sync.Once
}

func (p *discardPlayback) Stop() error {
	p.once.Do(func() {
		close(p.stop)
		if p.closer != nil {
			_ = p.closer.Close()
		}
	})
	<-p.done
	return nil
}

func (p *discardPlayback) Done() <-chan struct{} {
	return p.done
}
