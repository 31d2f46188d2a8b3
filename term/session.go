// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session.go
// Summary: Terminal session orchestration: pty + emulator + double
// buffer, one background reader goroutine, input routing and repaint
// scheduling for the host UI.

package term

import (
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/OGKevin/plato/config"
	"github.com/OGKevin/plato/font"
	"github.com/OGKevin/plato/framebuffer"
	"github.com/OGKevin/plato/geom"
	"github.com/OGKevin/plato/term/history"
	"github.com/OGKevin/plato/term/parser"
)

const readChunkSize = 4096

// Repaint tells the host UI what to redraw, in screen coordinates.
type Repaint struct {
	Region geom.Rectangle
	Full   bool
}

// Session renders one shell into one fixed-size grid for its lifetime.
// All exported methods except Close are UI-thread calls; the reader
// goroutine touches only the double buffer and the wake channel.
type Session struct {
	rect     geom.Rectangle // widget area, screen coordinates
	rows     int
	cols     int
	settings config.Settings

	pty    *Pty
	reader *os.File

	emuMu    sync.Mutex
	emulator *Emulator

	buffer   *DoubleBuffer
	hist     *history.Store
	wake     chan struct{}
	shutdown atomic.Bool
	exited   atomic.Bool
	wg       sync.WaitGroup

	menuOpen bool
}

// NewSession builds a session inside rect, reserving keyboardHeight
// pixels at the bottom for the on-screen keyboard. Construction failures
// aggregate into a single error; no partially-initialized session
// escapes.
func NewSession(rect geom.Rectangle, keyboardHeight int, settings config.Settings) (*Session, error) {
	faces, err := font.LoadFaces(settings.FontSize)
	if err != nil {
		return nil, err
	}

	availableWidth := rect.Width()
	availableHeight := rect.Height() - keyboardHeight
	rows, cols := CalculateGridForFontSize(availableWidth, availableHeight, faces.Monospace)

	var hist *history.Store
	if settings.HistoryPath != "" {
		hist, err = history.Open(settings.HistoryPath, settings.HistoryLimit)
		if err != nil {
			log.Printf("Terminal: scrollback store unavailable: %v", err)
			hist = nil
		}
	}

	p, err := SpawnPty(settings.Shell, uint16(rows), uint16(cols))
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, err
	}
	reader, err := p.TakeReader()
	if err != nil {
		p.Close()
		if hist != nil {
			hist.Close()
		}
		return nil, err
	}

	buffer, writer := NewDoubleBuffer(rect.Width(), rect.Height())

	s := &Session{
		rect:     rect,
		rows:     rows,
		cols:     cols,
		settings: settings,
		pty:      p,
		reader:   reader,
		emulator: NewEmulator(rows, cols, hist),
		buffer:   buffer,
		hist:     hist,
		wake:     make(chan struct{}, 1),
	}

	s.wg.Add(1)
	go s.readerLoop(writer)
	return s, nil
}

// readerLoop is the single background goroutine: poll, read, feed,
// render, swap, wake. It loads its own font faces; the UI thread's are
// not shared across goroutines.
func (s *Session) readerLoop(writer *BufferWriter) {
	defer s.wg.Done()
	defer func() {
		s.exited.Store(true)
		s.notifyWake()
	}()

	faces, err := font.LoadFaces(s.settings.FontSize)
	if err != nil {
		log.Printf("Terminal: failed to load fonts in reader goroutine: %v", err)
		return
	}
	face := faces.Monospace
	renderer := NewRendererWithFontSize(face, s.rows, s.cols)

	buf := make([]byte, readChunkSize)
	fds := []unix.PollFd{{Fd: int32(s.reader.Fd()), Events: unix.POLLIN}}

	for {
		if s.shutdown.Load() {
			return
		}

		fds[0].Revents = 0
		n, err := unix.Poll(fds, s.settings.PollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			log.Printf("Terminal: poll error: %v", err)
			return
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			if fds[0].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
				return
			}
			continue
		}

		n, readErr := s.reader.Read(buf)
		if n > 0 {
			s.emuMu.Lock()
			s.emulator.Feed(buf[:n])
			dirty := renderer.RenderScreen(s.emulator.Screen(), writer.Back, face)
			s.emuMu.Unlock()

			writer.DirtyRect = dirty
			s.buffer.Swap(writer)
			// The wake goes out only after the swap released the lock,
			// so the front surface already reflects this frame.
			s.notifyWake()
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && !errors.Is(readErr, unix.EIO) {
				log.Printf("Terminal: reader error: %v", readErr)
			}
			return
		}
	}
}

func (s *Session) notifyWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake is the notification channel into the host's scheduling loop.
func (s *Session) Wake() <-chan struct{} {
	return s.wake
}

// Exited reports that the reader goroutine has stopped, which means the
// shell closed its end or an unrecoverable read error occurred.
func (s *Session) Exited() bool {
	return s.exited.Load()
}

// Size returns the grid dimensions as rows, cols.
func (s *Session) Size() (int, int) {
	return s.rows, s.cols
}

// Rect returns the widget area in screen coordinates.
func (s *Session) Rect() geom.Rectangle {
	return s.rect
}

// SendChar writes a character to the shell, UTF-8 encoded.
func (s *Session) SendChar(r rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	s.send(buf[:n])
}

// SendSubmit maps the keyboard's submit action to carriage return.
func (s *Session) SendSubmit() {
	s.send([]byte{'\r'})
}

// SendDelete maps the keyboard's delete action to DEL.
func (s *Session) SendDelete() {
	s.send([]byte{0x7F})
}

// SendRaw passes a byte sequence through unchanged.
func (s *Session) SendRaw(data []byte) {
	s.send(data)
}

// SendControl converts a Control+letter chord to its control byte.
func (s *Session) SendControl(ch rune) {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if ch < 'A' || ch > 'Z' {
		return
	}
	s.send([]byte{byte(ch-'A') + 1})
}

// send is fire-and-forget: typing into a dead shell is a no-op.
func (s *Session) send(data []byte) {
	if _, err := s.pty.Write(data); err != nil {
		log.Printf("Terminal: dropped input write: %v", err)
	}
}

// PendingRepaints drains the double buffer's repaint signals, translated
// into screen coordinates: one coarse full repaint, or one fast partial
// repaint per queued rectangle.
func (s *Session) PendingRepaints() []Repaint {
	if s.buffer.TakeFullRefresh() {
		return []Repaint{{Region: s.rect, Full: true}}
	}
	rects := s.buffer.DrainDirtyRects()
	if len(rects) == 0 {
		return nil
	}
	out := make([]Repaint, 0, len(rects))
	for _, r := range rects {
		out = append(out, Repaint{Region: r.Translate(s.rect.Min.X, s.rect.Min.Y)})
	}
	return out
}

// DrawTo blits the requested screen-space region from the front surface
// onto the host framebuffer, under the buffer lock.
func (s *Session) DrawTo(fb *framebuffer.Pixmap, region geom.Rectangle) {
	local := region.Translate(-s.rect.Min.X, -s.rect.Min.Y)
	s.buffer.WithFront(func(front *framebuffer.Pixmap) {
		clipped, ok := local.Intersection(front.Bounds())
		if !ok {
			return
		}
		dst := geom.Pt(clipped.Min.X+s.rect.Min.X, clipped.Min.Y+s.rect.Min.Y)
		fb.DrawPixmap(front, clipped, dst)
	})
}

// ScreenRowText returns the text of one grid row; used by callers that
// inspect terminal content (and by tests).
func (s *Session) ScreenRowText(row int) string {
	s.emuMu.Lock()
	defer s.emuMu.Unlock()
	return s.emulator.Screen().RowText(row)
}

// ScreenCell returns a copy of one grid cell.
func (s *Session) ScreenCell(row, col int) parser.Cell {
	s.emuMu.Lock()
	defer s.emuMu.Unlock()
	return s.emulator.Screen().Cell(row, col)
}

// History exposes the scrollback store; nil when disabled.
func (s *Session) History() *history.Store {
	return s.hist
}

// ToggleTitleMenu flips the title-menu overlay state and reports the new
// state. The only modal state a session carries.
func (s *Session) ToggleTitleMenu() bool {
	s.menuOpen = !s.menuOpen
	return s.menuOpen
}

// MenuOpen reports whether the title menu overlay is shown.
func (s *Session) MenuOpen() bool {
	return s.menuOpen
}

// Close signals the reader goroutine, joins it, then releases the pty
// and history store. Worst-case latency is one poll timeout.
func (s *Session) Close() error {
	s.shutdown.Store(true)
	s.wg.Wait()

	err := s.pty.Close()
	if cerr := s.reader.Close(); err == nil {
		err = cerr
	}
	if s.hist != nil {
		if herr := s.hist.Close(); err == nil {
			err = herr
		}
	}
	return err
}
