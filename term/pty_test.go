// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/pty_test.go
// Summary: Exercises pty spawning, the TERM environment and independent
// read handles.

package term

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

func spawnTestPty(t *testing.T) *Pty {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("pty tests need a unix host")
	}
	p, err := SpawnPty("", 24, 80)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSpawnDefaultShellAndTerm(t *testing.T) {
	p := spawnTestPty(t)
	reader, err := p.TakeReader()
	if err != nil {
		t.Fatalf("take reader: %v", err)
	}
	defer reader.Close()

	if _, err := p.Write([]byte("echo term=$TERM\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	reader.SetReadDeadline(time.Now().Add(5 * time.Second))
	var out strings.Builder
	buf := make([]byte, 1024)
	for !strings.Contains(out.String(), "term=xterm-256color") {
		n, err := reader.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	if !strings.Contains(out.String(), "term=xterm-256color") {
		t.Fatalf("TERM not propagated, got: %q", out.String())
	}
}

func TestSpawnFailureReturnsNoPty(t *testing.T) {
	p, err := SpawnPty("/definitely/not/a/shell", 24, 80)
	if err == nil {
		p.Close()
		t.Fatal("expected spawn failure")
	}
	if p != nil {
		t.Fatal("partial pty escaped on failure")
	}
}

func TestFdIsPollable(t *testing.T) {
	p := spawnTestPty(t)
	if p.Fd() <= 0 {
		t.Fatalf("bad fd: %d", p.Fd())
	}
}
