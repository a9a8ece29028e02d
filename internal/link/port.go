package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/term"
)

// DefaultBaud matches the keyer firmware.
const DefaultBaud = 115200

// ErrNotConnected is returned when writing to a closed port.
var ErrNotConnected = errors.New("port is not connected")

// ConnectError reports a failed open with a readable message. It is not
// retried; the caller decides.
type ConnectError struct {
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("could not connect to port %s: %v", e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Sender writes commands to the device.
type Sender interface {
	SendCommand(cmd string) error
}

// Port is an open serial connection.
type Port struct {
	name string
	file *os.File

	mu     sync.Mutex
	closed bool
}

// Open opens and configures a serial device: raw mode, 8N1, no flow
// control, at the given baud rate. The file stays on the runtime poller so
// Close interrupts a pending read.
func Open(name string, baud int) (*Port, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ConnectError{Port: name, Err: errors.New("no port selected")}
	}
	if err := checkBaud(baud); err != nil {
		return nil, &ConnectError{Port: name, Err: err}
	}
	path := devicePath(name)
	file, err := os.OpenFile(path, os.O_RDWR|openFlags, 0)
	if err != nil {
		return nil, &ConnectError{Port: name, Err: err}
	}
	if err := setup(file, baud); err != nil {
		_ = file.Close()
		return nil, &ConnectError{Port: name, Err: err}
	}
	return &Port{name: name, file: file}, nil
}

func setup(file *os.File, baud int) error {
	rc, err := file.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to access device: %w", err)
	}
	var setupErr error
	err = rc.Control(func(fd uintptr) {
		if _, err := term.MakeRaw(int(fd)); err != nil {
			setupErr = fmt.Errorf("failed to set raw mode: %w", err)
			return
		}
		setupErr = configure(int(fd), baud)
	})
	if err != nil {
		return fmt.Errorf("failed to access device: %w", err)
	}
	return setupErr
}

var standardBauds = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

func checkBaud(baud int) error {
	for _, b := range standardBauds {
		if b == baud {
			return nil
		}
	}
	return fmt.Errorf("unsupported baud rate %d", baud)
}

// Name returns the port name used to open the device.
func (p *Port) Name() string {
	return p.name
}

// Connected reports whether the port is still open.
func (p *Port) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Write sends raw bytes.
func (p *Port) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrNotConnected
	}
	return p.file.Write(data)
}

// SendCommand writes a command, terminating it with a line feed.
func (p *Port) SendCommand(cmd string) error {
	data := []byte(cmd)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if _, err := p.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// Pump reads chunks until the port fails or is closed, handing each
// chunk to onChunk as it arrives. Closing the port unblocks it. A nil
// return means the port was closed locally or ctx was cancelled.
func (p *Port) Pump(ctx context.Context, onChunk func([]byte)) error {
	buf := make([]byte, 4096)
	for {
		n, err := p.file.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onChunk(chunk)
		}
		if err != nil {
			if ctx.Err() != nil || !p.Connected() {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("device disconnected: %w", err)
			}
			return fmt.Errorf("failed to read from %s: %w", p.name, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close releases the device. Closing twice is a no-op.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.file.Close()
}

// ListPorts returns serial devices that look like keyers.
func ListPorts() ([]string, error) {
	var ports []string
	for _, pattern := range portPatterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to list ports: %w", err)
		}
		for _, m := range matches {
			ports = append(ports, filepath.Base(m))
		}
	}
	sort.Strings(ports)
	return ports, nil
}

func devicePath(name string) string {
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join("/dev", name)
}
