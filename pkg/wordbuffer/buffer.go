// Package wordbuffer accumulates typed characters from every keyboard into one
// stream and extracts the most recent word at word boundaries.
package wordbuffer

import (
	"codeberg.org/smarttype/smarttype/pkg/keymap"
	"github.com/holoplot/go-evdev"
	"strings"
	"sync"
	"time"
)

const DefaultIdleTimeout = 2 * time.Second

type Buffer struct {
	lock         sync.RWMutex
	text         []rune
	lastActivity time.Time
	idleTimeout  time.Duration
	now          func() time.Time
}

type Option func(*Buffer)

func WithIdleTimeout(d time.Duration) Option {
	return func(b *Buffer) {
		b.idleTimeout = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		b.now = now
	}
}

func New(opts ...Option) *Buffer {
	b := &Buffer{
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.lastActivity = b.now()
	return b
}

// Press applies one key press. boundary reports whether key ends a word; word
// is the word it ended, empty when the boundary did not close one (empty
// buffer, or a second boundary in a row). Mutation and extraction happen under
// one lock so a concurrent press from another device cannot land in between.
func (b *Buffer) Press(key evdev.EvCode) (word string, boundary bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	now := b.now()

	switch {
	case key == keymap.Backspace:
		if len(b.text) > 0 {
			b.text = b.text[:len(b.text)-1]
		}
		b.lastActivity = now
		return "", false

	case keymap.IsBoundary(key):
		closes := len(b.text) > 0 && b.text[len(b.text)-1] != ' '
		b.text = append(b.text, ' ')
		b.lastActivity = now
		if !closes {
			return "", true
		}
		return b.lastWord(), true
	}

	ch, ok := keymap.KeyToChar(key)
	if !ok {
		return "", false
	}

	if now.Sub(b.lastActivity) > b.idleTimeout {
		b.text = b.text[:0]
	}
	b.text = append(b.text, ch)
	b.lastActivity = now
	return "", false
}

// LastWord returns the last whitespace-separated token in the buffer.
func (b *Buffer) LastWord() (string, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	word := b.lastWord()
	return word, word != ""
}

func (b *Buffer) lastWord() string {
	fields := strings.Fields(string(b.text))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (b *Buffer) SetIdleTimeout(d time.Duration) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.idleTimeout = d
}

func (b *Buffer) String() string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return string(b.text)
}

func (b *Buffer) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.text)
}

func (b *Buffer) LastActivity() time.Time {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.lastActivity
}

func (b *Buffer) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.text = b.text[:0]
}
