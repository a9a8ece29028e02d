//go:build linux

package link

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// openPTY returns the master side and the path of a fresh pseudo terminal.
func openPTY(t *testing.T) (*os.File, string) {
	t.Helper()
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pty support: %v", err)
	}
	t.Cleanup(func() { _ = master.Close() })
	rc, err := master.SyscallConn()
	if err != nil {
		t.Fatalf("SyscallConn: %v", err)
	}
	var n int
	var ptyErr error
	if err := rc.Control(func(fd uintptr) {
		if ptyErr = unix.IoctlSetPointerInt(int(fd), unix.TIOCSPTLCK, 0); ptyErr != nil {
			return
		}
		n, ptyErr = unix.IoctlGetInt(int(fd), unix.TIOCGPTN)
	}); err != nil {
		t.Fatalf("Control: %v", err)
	}
	if ptyErr != nil {
		t.Skipf("pty setup failed: %v", ptyErr)
	}
	return master, "/dev/pts/" + strconv.Itoa(n)
}

func TestCloseUnblocksPump(t *testing.T) {
	_, path := openPTY(t)
	p, err := Open(path, DefaultBaud)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Pump(context.Background(), func([]byte) {})
	}()
	time.Sleep(100 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil after local close, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Pump still blocked after Close")
	}
}

func TestOpenAppliesLineSettings(t *testing.T) {
	master, path := openPTY(t)
	p, err := Open(path, 9600)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = p.Close() }()

	rc, err := p.file.SyscallConn()
	if err != nil {
		t.Fatalf("SyscallConn: %v", err)
	}
	var tio *unix.Termios
	var getErr error
	if err := rc.Control(func(fd uintptr) {
		tio, getErr = unix.IoctlGetTermios(int(fd), unix.TCGETS)
	}); err != nil {
		t.Fatalf("Control: %v", err)
	}
	if getErr != nil {
		t.Fatalf("IoctlGetTermios: %v", getErr)
	}
	if tio.Cflag&unix.CBAUD != unix.B9600 {
		t.Fatalf("expected 9600 baud, got cflag %#x", tio.Cflag)
	}
	if tio.Lflag&unix.ICANON != 0 || tio.Lflag&unix.ECHO != 0 {
		t.Fatalf("expected raw mode, got lflag %#x", tio.Lflag)
	}

	if _, err := master.Write([]byte("CQ\n")); err != nil {
		t.Fatalf("write master: %v", err)
	}
	got := make(chan []byte, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = p.Pump(ctx, func(b []byte) {
			select {
			case got <- b:
			default:
			}
		})
	}()
	select {
	case b := <-got:
		if string(b[:1]) != "C" {
			t.Fatalf("unexpected data %q", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no data from the device")
	}
}
