package oracle

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCorrect(t *testing.T) {
	table := New(map[string]string{"smarttpye": "smarttype"}, 2)

	tests := []struct {
		word string
		want string
		ok   bool
	}{
		{"teh", "the", true},
		{"Teh", "The", true},
		{"TEH", "THE", true},
		{"recieve", "receive", true},
		{"borwn", "brown", true},
		{"smarttpye", "smarttype", true},
		{"SmartTpye", "Smarttype", true},
		{"the", "", false},
		{"hello", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := table.Correct(tt.word)
		assert.Equal(t, tt.ok, ok, "word %q", tt.word)
		assert.Equal(t, tt.want, got, "word %q", tt.word)
	}
}

func TestMinWordLength(t *testing.T) {
	table := New(map[string]string{"ab": "abc", "u": "you"}, 3)

	_, ok := table.Correct("ab")
	assert.False(t, ok)
	_, ok = table.Correct("u")
	assert.False(t, ok)

	table.Swap(map[string]string{"ab": "abc"}, 2)
	got, ok := table.Correct("ab")
	assert.True(t, ok)
	assert.Equal(t, "abc", got)
}

func TestCustomTyposOverrideBuiltin(t *testing.T) {
	table := New(map[string]string{"TEH": "tea"}, 2)
	got, ok := table.Correct("teh")
	require.True(t, ok)
	assert.Equal(t, "tea", got)
}

func TestSwapDropsOldCustomTypos(t *testing.T) {
	table := New(map[string]string{"qwx": "quix"}, 2)
	_, ok := table.Correct("qwx")
	require.True(t, ok)

	table.Swap(nil, 2)
	_, ok = table.Correct("qwx")
	assert.False(t, ok)

	_, ok = table.Correct("teh")
	assert.True(t, ok)
}

func TestPreserveCase(t *testing.T) {
	assert.Equal(t, "THE", preserveCase("TEH", "the"))
	assert.Equal(t, "The", preserveCase("Teh", "the"))
	assert.Equal(t, "the", preserveCase("teh", "the"))
	assert.Equal(t, "the", preserveCase("tEH", "The"))
	assert.Equal(t, "A LOT", preserveCase("ALOT", "a lot"))
}

func TestParseTypos(t *testing.T) {
	typos, err := ParseTypos(strings.NewReader("typos:\n  Teh: the\n  adn:  and \n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"teh": "the", "adn": "and"}, typos)

	typos, err = ParseTypos(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, typos)

	_, err = ParseTypos(strings.NewReader("typos:\n  teh: ''\n"))
	assert.Error(t, err)

	_, err = ParseTypos(strings.NewReader("typos: [not, a, map]"))
	assert.ErrorContains(t, err, "decode yaml")
}

func TestParseTyposFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("typos:\n  waht: what\n"), 0644))

	typos, err := ParseTyposFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"waht": "what"}, typos)

	_, err = ParseTyposFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open file")
}

func TestBuiltin(t *testing.T) {
	typos := Builtin()
	assert.Equal(t, "the", typos["teh"])
	for typo, correction := range typos {
		assert.Equal(t, strings.ToLower(typo), typo)
		assert.NotEqual(t, typo, correction)
		assert.False(t, InvisibleEdit(typo, correction), "%q -> %q fires on correctly typed text", typo, correction)
	}
}

func TestCorrectionsOnlyAddingSymbolsAreDropped(t *testing.T) {
	table := New(map[string]string{
		"dont":   "don't",
		"Isnt":   "isn't",
		"eg":     "e.g.",
		"alot":   "a lot",
		"wont":   "won't",
		"thatss": "that's",
	}, 2)

	for _, word := range []string{"dont", "isnt", "Isnt", "eg"} {
		_, ok := table.Correct(word)
		assert.False(t, ok, "word %q", word)
	}

	got, ok := table.Correct("alot")
	require.True(t, ok)
	assert.Equal(t, "a lot", got)

	got, ok = table.Correct("thatss")
	require.True(t, ok)
	assert.Equal(t, "that's", got)
}

func TestInvisibleEdit(t *testing.T) {
	assert.True(t, InvisibleEdit("dont", "don't"))
	assert.True(t, InvisibleEdit("dont", "Don't"))
	assert.True(t, InvisibleEdit("etc", "etc."))
	assert.False(t, InvisibleEdit("alot", "a lot"))
	assert.False(t, InvisibleEdit("teh", "the"))
	assert.False(t, InvisibleEdit("cafe", "café"))
}

func TestSetMinWordLengthKeepsTypos(t *testing.T) {
	table := New(map[string]string{"qwx": "quix"}, 2)
	table.SetMinWordLength(4)
	assert.Equal(t, 4, table.MinWordLength())

	_, ok := table.Correct("qwx")
	assert.False(t, ok)

	table.SetMinWordLength(3)
	got, ok := table.Correct("qwx")
	require.True(t, ok)
	assert.Equal(t, "quix", got)
}
