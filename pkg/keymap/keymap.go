// Package keymap translates between kernel key codes and characters for a US
// keyboard layout.
package keymap

import (
	"github.com/holoplot/go-evdev"
	"sort"
	"unicode"
)

const (
	Backspace evdev.EvCode = evdev.KEY_BACKSPACE
	Shift     evdev.EvCode = evdev.KEY_LEFTSHIFT
)

// Output is how a character is produced on the injection side.
type Output struct {
	Key   evdev.EvCode
	Shift bool
}

type keyChars struct {
	normal  rune
	shifted rune
}

var layout = map[evdev.EvCode]keyChars{
	evdev.KEY_A: {'a', 'A'}, evdev.KEY_B: {'b', 'B'},
	evdev.KEY_C: {'c', 'C'}, evdev.KEY_D: {'d', 'D'},
	evdev.KEY_E: {'e', 'E'}, evdev.KEY_F: {'f', 'F'},
	evdev.KEY_G: {'g', 'G'}, evdev.KEY_H: {'h', 'H'},
	evdev.KEY_I: {'i', 'I'}, evdev.KEY_J: {'j', 'J'},
	evdev.KEY_K: {'k', 'K'}, evdev.KEY_L: {'l', 'L'},
	evdev.KEY_M: {'m', 'M'}, evdev.KEY_N: {'n', 'N'},
	evdev.KEY_O: {'o', 'O'}, evdev.KEY_P: {'p', 'P'},
	evdev.KEY_Q: {'q', 'Q'}, evdev.KEY_R: {'r', 'R'},
	evdev.KEY_S: {'s', 'S'}, evdev.KEY_T: {'t', 'T'},
	evdev.KEY_U: {'u', 'U'}, evdev.KEY_V: {'v', 'V'},
	evdev.KEY_W: {'w', 'W'}, evdev.KEY_X: {'x', 'X'},
	evdev.KEY_Y: {'y', 'Y'}, evdev.KEY_Z: {'z', 'Z'},

	evdev.KEY_1: {'1', '!'}, evdev.KEY_2: {'2', '@'},
	evdev.KEY_3: {'3', '#'}, evdev.KEY_4: {'4', '$'},
	evdev.KEY_5: {'5', '%'}, evdev.KEY_6: {'6', '^'},
	evdev.KEY_7: {'7', '&'}, evdev.KEY_8: {'8', '*'},
	evdev.KEY_9: {'9', '('}, evdev.KEY_0: {'0', ')'},

	evdev.KEY_MINUS:      {'-', '_'},
	evdev.KEY_EQUAL:      {'=', '+'},
	evdev.KEY_LEFTBRACE:  {'[', '{'},
	evdev.KEY_RIGHTBRACE: {']', '}'},
	evdev.KEY_SEMICOLON:  {';', ':'},
	evdev.KEY_APOSTROPHE: {'\'', '"'},
	evdev.KEY_GRAVE:      {'`', '~'},
	evdev.KEY_BACKSLASH:  {'\\', '|'},
	evdev.KEY_COMMA:      {',', '<'},
	evdev.KEY_DOT:        {'.', '>'},
	evdev.KEY_SLASH:      {'/', '?'},
	evdev.KEY_SPACE:      {' ', ' '},
}

// symbol keys type characters but never become part of a captured word
var symbolKeys = map[evdev.EvCode]bool{
	evdev.KEY_MINUS:      true,
	evdev.KEY_EQUAL:      true,
	evdev.KEY_LEFTBRACE:  true,
	evdev.KEY_RIGHTBRACE: true,
	evdev.KEY_SEMICOLON:  true,
	evdev.KEY_APOSTROPHE: true,
	evdev.KEY_GRAVE:      true,
	evdev.KEY_BACKSLASH:  true,
	evdev.KEY_COMMA:      true,
	evdev.KEY_DOT:        true,
	evdev.KEY_SLASH:      true,
}

var outputs = buildOutputs()

func buildOutputs() map[rune]Output {
	out := make(map[rune]Output, len(layout)*2)
	for key, chars := range layout {
		out[chars.normal] = Output{Key: key}
		if chars.shifted != chars.normal {
			out[chars.shifted] = Output{Key: key, Shift: true}
		}
	}
	return out
}

// KeyToChar returns the character a key press contributes to a word:
// lowercase letters, digits and space.
func KeyToChar(key evdev.EvCode) (rune, bool) {
	if symbolKeys[key] {
		return 0, false
	}
	chars, ok := layout[key]
	if !ok {
		return 0, false
	}
	return chars.normal, true
}

// CharToOutput returns the key (and whether shift must be held) that types
// ch. Only printable 7-bit ASCII is supported.
func CharToOutput(ch rune) (Output, bool) {
	out, ok := outputs[ch]
	return out, ok
}

// Captured reports whether typing ch shows up in KeyToChar output, ignoring
// case. Symbols are typed but never captured.
func Captured(ch rune) bool {
	out, ok := outputs[unicode.ToLower(ch)]
	return ok && !out.Shift && !symbolKeys[out.Key]
}

func IsBoundary(key evdev.EvCode) bool {
	switch key {
	case evdev.KEY_SPACE, evdev.KEY_ENTER, evdev.KEY_KPENTER:
		return true
	}
	return false
}

// OutputKeys lists every key the injector may press.
func OutputKeys() []evdev.EvCode {
	keys := make([]evdev.EvCode, 0, len(layout)+2)
	for key := range layout {
		keys = append(keys, key)
	}
	keys = append(keys, Backspace, Shift)

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
