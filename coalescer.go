package codeviz

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// MaxDisplayRunes bounds DisplayText. Older text is dropped from the front.
	MaxDisplayRunes = 4000

	// FlushInterval is the cadence at which queued fragments are merged into
	// DisplayText.
	FlushInterval = 100 * time.Millisecond
)

// Coalescer accumulates text fragments and merges them into a bounded
// display string on a fixed cadence.
//
// Append and the Sink methods may be called from any goroutine; they only
// touch the fragment queue. Everything else (Tick, Flush, Reset, SetText,
// Text, Version) belongs to the render goroutine.
type Coalescer struct {
	mu         sync.Mutex
	queue      []string
	spare      []string
	replace    bool
	generation uint64

	text      string
	version   uint64
	lastFlush time.Time
}

// NewCoalescer creates a coalescer whose DisplayText starts as initial
// (clipped to MaxDisplayRunes).
func NewCoalescer(initial string) *Coalescer {
	return &Coalescer{text: clipRunes(initial, MaxDisplayRunes)}
}

// Append enqueues a fragment for the next flush. It never waits on anything
// but the short queue lock.
func (c *Coalescer) Append(fragment string) {
	if fragment == "" {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, fragment)
	c.mu.Unlock()
}

// Sink returns a handle bound to the coalescer's current generation. Once
// Reset is called, fragments delivered through older sinks are dropped, so a
// cancelled stream can never leak text into the next session.
func (c *Coalescer) Sink() Sink {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return Sink{c: c, gen: gen}
}

// Tick flushes when at least FlushInterval has elapsed since the previous
// flush. It returns the current DisplayText and whether it changed.
func (c *Coalescer) Tick(now time.Time) (string, bool) {
	if !c.lastFlush.IsZero() && now.Sub(c.lastFlush) < FlushInterval {
		return c.text, false
	}
	c.lastFlush = now
	return c.Flush()
}

// Flush merges every queued fragment, in arrival order, into DisplayText and
// clears the queue. Flushing an empty queue is a no-op.
func (c *Coalescer) Flush() (string, bool) {
	c.mu.Lock()
	if len(c.queue) == 0 && !c.replace {
		c.mu.Unlock()
		return c.text, false
	}
	pending := c.queue
	replace := c.replace
	c.queue = c.spare[:0]
	c.replace = false
	c.mu.Unlock()

	var b strings.Builder
	n := 0
	for _, f := range pending {
		n += len(f)
	}
	if !replace {
		n += len(c.text)
	}
	b.Grow(n)
	if !replace {
		b.WriteString(c.text)
	}
	for i, f := range pending {
		b.WriteString(f)
		pending[i] = ""
	}

	c.mu.Lock()
	c.spare = pending[:0]
	c.mu.Unlock()

	c.text = clipRunes(b.String(), MaxDisplayRunes)
	c.version++
	return c.text, true
}

// Reset clears DisplayText and the queue and starts a new generation.
func (c *Coalescer) Reset() {
	c.mu.Lock()
	c.generation++
	c.queue = c.queue[:0]
	c.replace = false
	c.mu.Unlock()

	c.text = ""
	c.version++
	c.lastFlush = time.Time{}
}

// SetText replaces DisplayText immediately and drops anything still queued.
func (c *Coalescer) SetText(text string) {
	c.mu.Lock()
	c.queue = c.queue[:0]
	c.replace = false
	c.mu.Unlock()

	c.text = clipRunes(text, MaxDisplayRunes)
	c.version++
}

// Text returns the current DisplayText.
func (c *Coalescer) Text() string {
	return c.text
}

// Version increments every time DisplayText changes.
func (c *Coalescer) Version() uint64 {
	return c.version
}

// Pending reports the number of fragments waiting for the next flush.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Coalescer) appendGen(gen uint64, fragment string) {
	if fragment == "" {
		return
	}
	c.mu.Lock()
	if gen == c.generation {
		c.queue = append(c.queue, fragment)
	}
	c.mu.Unlock()
}

func (c *Coalescer) replaceGen(gen uint64, text string) {
	c.mu.Lock()
	if gen == c.generation {
		c.queue = append(c.queue[:0], text)
		c.replace = true
	}
	c.mu.Unlock()
}

// Sink delivers text into a Coalescer on behalf of one session. It is a small
// value and safe to copy and to use from any goroutine.
type Sink struct {
	c   *Coalescer
	gen uint64
}

// Append enqueues a fragment if the session is still current.
func (s Sink) Append(fragment string) {
	s.c.appendGen(s.gen, fragment)
}

// Replace schedules text to replace DisplayText at the next flush if the
// session is still current.
func (s Sink) Replace(text string) {
	s.c.replaceGen(s.gen, text)
}

// Current reports whether the coalescer has not been reset since the sink was
// created.
func (s Sink) Current() bool {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.gen == s.c.generation
}

// clipRunes returns the last max runes of s.
func clipRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	count := utf8.RuneCountInString(s)
	if count <= max {
		return s
	}
	drop := count - max
	i := 0
	for drop > 0 {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		drop--
	}
	return s[i:]
}
