// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/pty.go
// Summary: Pseudo-terminal ownership: spawns the shell and exposes
// read/write handles for the session.
// Notes: The child's lifetime is tied to the master; closing the master
// removes the child's controlling terminal.

package term

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// DefaultShell is spawned when the caller does not name one.
const DefaultShell = "/bin/sh"

// Pty owns the pseudo-terminal master and the shell process behind it.
type Pty struct {
	master *os.File
	cmd    *exec.Cmd
}

// SpawnPty opens a pty pair sized to the grid and starts the shell on
// the slave side with TERM=xterm-256color. On any failure no partial
// Pty escapes.
func SpawnPty(shell string, rows, cols uint16) (*Pty, error) {
	if shell == "" {
		shell = DefaultShell
	}
	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("failed to spawn shell %q on pty: %w", shell, err)
	}
	return &Pty{master: master, cmd: cmd}, nil
}

// Write sends bytes to the shell. Errors mean the shell may be gone;
// callers treat writes as fire-and-forget.
func (p *Pty) Write(data []byte) (int, error) {
	n, err := p.master.Write(data)
	if err != nil {
		return n, fmt.Errorf("pty write failed: %w", err)
	}
	return n, nil
}

// TakeReader returns an independent read handle on the master, safe to
// use from a different goroutine than the writer.
func (p *Pty) TakeReader() (*os.File, error) {
	fd, err := unix.Dup(int(p.master.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to dup pty master: %w", err)
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), "pty-reader"), nil
}

// Fd exposes the pollable master descriptor for the reader loop.
func (p *Pty) Fd() int {
	return int(p.master.Fd())
}

// Close closes the master, which hangs up the child's controlling
// terminal. The child is reaped in the background.
func (p *Pty) Close() error {
	err := p.master.Close()
	if p.cmd != nil && p.cmd.Process != nil {
		go p.cmd.Wait()
	}
	return err
}
