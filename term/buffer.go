// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/buffer.go
// Summary: Cross-thread frame exchange between the reader goroutine and
// the UI: double-buffered pixmaps with bounded dirty-rect tracking.

package term

import (
	"sync"

	"github.com/OGKevin/plato/framebuffer"
	"github.com/OGKevin/plato/geom"
)

// DirtyRectCapacity bounds the shared dirty-rect queue. Overflow trades
// precision for a single coarse repaint.
const DirtyRectCapacity = 16

// BufferWriter is the reader goroutine's side: an exclusively owned back
// surface and the pending dirty rectangle for the next swap.
type BufferWriter struct {
	Back      *framebuffer.Pixmap
	DirtyRect *geom.Rectangle
}

// DoubleBuffer is the lock-guarded shared state: the UI-visible front
// surface, a bounded FIFO of dirty rectangles and a full-refresh flag.
// The queue and the flag are never both populated: once the queue would
// overflow it is cleared and the flag set instead.
type DoubleBuffer struct {
	mu          sync.Mutex
	front       *framebuffer.Pixmap
	dirtyRects  []geom.Rectangle
	fullRefresh bool
}

// NewDoubleBuffer allocates both surfaces at the given pixel size.
func NewDoubleBuffer(width, height int) (*DoubleBuffer, *BufferWriter) {
	shared := &DoubleBuffer{
		front:      framebuffer.NewPixmap(width, height),
		dirtyRects: make([]geom.Rectangle, 0, DirtyRectCapacity),
	}
	writer := &BufferWriter{
		Back: framebuffer.NewPixmap(width, height),
	}
	return shared, writer
}

// Swap exchanges front and back by handle in O(1), queues the writer's
// pending rectangle, then copies the new front back into the writer's
// surface. The copy-back is mandatory: the next incremental render must
// diff against exactly the pixels the UI is displaying.
func (b *DoubleBuffer) Swap(w *BufferWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.front, w.Back = w.Back, b.front

	if w.DirtyRect != nil {
		if b.fullRefresh {
			// Already degraded; the coarse repaint covers this rect.
		} else if len(b.dirtyRects) >= DirtyRectCapacity {
			b.dirtyRects = b.dirtyRects[:0]
			b.fullRefresh = true
		} else {
			b.dirtyRects = append(b.dirtyRects, *w.DirtyRect)
		}
		w.DirtyRect = nil
	}

	w.Back.CopyFrom(b.front)
}

// DrainDirtyRects removes and returns all queued rectangles. Single
// consumer: the UI thread.
func (b *DoubleBuffer) DrainDirtyRects() []geom.Rectangle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.dirtyRects) == 0 {
		return nil
	}
	out := make([]geom.Rectangle, len(b.dirtyRects))
	copy(out, b.dirtyRects)
	b.dirtyRects = b.dirtyRects[:0]
	return out
}

// TakeFullRefresh reads and clears the full-refresh flag.
func (b *DoubleBuffer) TakeFullRefresh() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.fullRefresh
	b.fullRefresh = false
	return v
}

// IsDirty reports whether either repaint signal is pending.
func (b *DoubleBuffer) IsDirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fullRefresh || len(b.dirtyRects) > 0
}

// WithFront runs fn with the front surface while holding the lock, for
// the host framebuffer blit.
func (b *DoubleBuffer) WithFront(fn func(front *framebuffer.Pixmap)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.front)
}
