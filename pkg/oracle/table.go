// Package oracle decides which typed words are typos.
package oracle

import (
	"codeberg.org/smarttype/smarttype/pkg/keymap"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

const DefaultMinWordLength = 2

// Table looks words up in the builtin typo list overlaid with user typos.
// It is safe for concurrent use and can be swapped while in use.
type Table struct {
	lock    sync.RWMutex
	builtin map[string]string
	entries map[string]string
	minLen  int
}

func New(custom map[string]string, minWordLength int) *Table {
	t := &Table{builtin: Builtin()}
	t.Swap(custom, minWordLength)
	return t
}

// Swap replaces the user typos and the length gate. Entries that only add
// uncaptured characters are dropped: "dont" -> "don't" would fire on a
// correctly typed "don't".
func (t *Table) Swap(custom map[string]string, minWordLength int) {
	entries := make(map[string]string, len(t.builtin)+len(custom))
	for typo, correction := range t.builtin {
		entries[typo] = correction
	}
	for typo, correction := range custom {
		entries[strings.ToLower(typo)] = correction
	}
	for typo, correction := range entries {
		if InvisibleEdit(typo, correction) {
			delete(entries, typo)
		}
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	t.entries = entries
	t.minLen = normalizeMinLength(minWordLength)
}

// SetMinWordLength changes the length gate and keeps the typos.
func (t *Table) SetMinWordLength(minWordLength int) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.minLen = normalizeMinLength(minWordLength)
}

func (t *Table) MinWordLength() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.minLen
}

func normalizeMinLength(n int) int {
	if n < 1 {
		return DefaultMinWordLength
	}
	return n
}

// InvisibleEdit reports whether typing correction would leave typo in the
// word buffer.
func InvisibleEdit(typo, correction string) bool {
	captured := strings.Map(func(r rune) rune {
		if !keymap.Captured(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, correction)
	return captured == strings.ToLower(typo)
}

func (t *Table) Correct(word string) (string, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if utf8.RuneCountInString(word) < t.minLen {
		return "", false
	}

	correction, ok := t.entries[strings.ToLower(word)]
	if !ok {
		return "", false
	}

	corrected := preserveCase(word, correction)
	if corrected == word {
		return "", false
	}
	return corrected, true
}

func (t *Table) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return len(t.entries)
}

// preserveCase gives correction the case pattern of original: all caps,
// capitalized, or lower case.
func preserveCase(original, correction string) string {
	if isAllUpper(original) {
		return strings.ToUpper(correction)
	}

	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(correction)
		return string(unicode.ToUpper(r)) + correction[size:]
	}

	return strings.ToLower(correction)
}

func isAllUpper(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
