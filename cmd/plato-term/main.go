// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/plato-term/main.go
// Summary: Headless terminal session driver for development: runs a
// shell session off-screen and reports repaint activity.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/OGKevin/plato/config"
	"github.com/OGKevin/plato/geom"
	terminal "github.com/OGKevin/plato/term"
)

func main() {
	var (
		shell    = flag.String("shell", "", "shell to spawn (default from settings)")
		width    = flag.Int("width", 800, "surface width in pixels")
		height   = flag.Int("height", 600, "surface height in pixels")
		fontSize = flag.Float64("font-size", 0, "font size (default from settings)")
	)
	flag.Parse()

	settings := config.Load()
	if *shell != "" {
		settings.Shell = *shell
	}
	if *fontSize > 0 {
		settings.FontSize = *fontSize
	}

	if err := run(settings, *width, *height); err != nil {
		log.Fatalf("plato-term: %v", err)
	}
}

func run(settings config.Settings, width, height int) error {
	session, err := terminal.NewSession(geom.Rect(0, 0, width, height), 0, settings)
	if err != nil {
		return err
	}
	defer session.Close()

	rows, cols := session.Size()
	fmt.Fprintf(os.Stderr, "plato-term: %dx%d grid, shell %s\r\n", rows, cols, settings.Shell)

	// Raw mode so keystrokes reach the embedded shell unmangled.
	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(stdinFd, oldState)
	}

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				session.SendRaw(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	frames := 0
	for {
		select {
		case <-session.Wake():
			if session.Exited() {
				fmt.Fprintf(os.Stderr, "plato-term: shell exited after %d frames\r\n", frames)
				return nil
			}
			for _, rp := range session.PendingRepaints() {
				frames++
				if rp.Full {
					fmt.Fprintf(os.Stderr, "frame %d: full refresh %v\r\n", frames, rp.Region)
				} else {
					fmt.Fprintf(os.Stderr, "frame %d: partial %v\r\n", frames, rp.Region)
				}
			}
		case <-sig:
			return nil
		}
	}
}
