package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		key  string
		want bool
		bind func(*KeyMap) bool
	}{
		{name: "enter searches", key: "enter", want: true, bind: func(k *KeyMap) bool { return Matches("enter", k.Search) }},
		{name: "tab moves focus", key: "tab", want: true, bind: func(k *KeyMap) bool { return Matches("tab", k.NextFocus) }},
		{name: "k moves up", key: "k", want: true, bind: func(k *KeyMap) bool { return Matches("k", k.Up) }},
		{name: "j moves down", key: "j", want: true, bind: func(k *KeyMap) bool { return Matches("j", k.Down) }},
		{name: "h moves left", key: "h", want: true, bind: func(k *KeyMap) bool { return Matches("h", k.Left) }},
		{name: "o opens", key: "o", want: true, bind: func(k *KeyMap) bool { return Matches("o", k.Open) }},
		{name: "c copies", key: "c", want: true, bind: func(k *KeyMap) bool { return Matches("c", k.Copy) }},
		{name: "ctrl+f opens the faq", key: "ctrl+f", want: true, bind: func(k *KeyMap) bool { return Matches("ctrl+f", k.FAQ) }},
		{name: "f alone is typed", key: "f", want: false, bind: func(k *KeyMap) bool { return Matches("f", k.FAQ) }},
		{name: "q does not quit", key: "q", want: false, bind: func(k *KeyMap) bool { return Matches("q", k.Quit) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bind(km))
		})
	}
}

func TestKeyMap_HelpSets(t *testing.T) {
	km := DefaultKeyMap()
	assert.Len(t, km.ShortHelp(), 4)
	assert.Len(t, km.ChipsHelp(), 4)
	assert.Len(t, km.ResultsHelp(), 5)
	assert.Equal(t, "copy link", km.Copy.Help().Desc)
}

func TestMatches_Unknown(t *testing.T) {
	assert.False(t, Matches("x", DefaultKeyMap().Open))
}
