package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQueryKey(t *testing.T) {
	assert.Equal(t, "Zm9v", EncodeQueryKey("foo"))
	assert.Equal(t, "44OH44O844K/5YiG5p6Q", EncodeQueryKey("データ分析"))
}

func TestDecodeQueryKey_RoundTrip(t *testing.T) {
	for _, q := range []string{"foo", "データ分析 事例", "a+b/c="} {
		got, err := DecodeQueryKey(EncodeQueryKey(q))
		require.NoError(t, err)
		assert.Equal(t, q, got)
	}
}

func TestDecodeQueryKey_Invalid(t *testing.T) {
	_, err := DecodeQueryKey("not base64!")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestQueryHistoryEntry_Validate(t *testing.T) {
	ok := QueryHistoryEntry{Query: "foo", EncodedKey: EncodeQueryKey("foo")}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name  string
		entry QueryHistoryEntry
	}{
		{"empty query", QueryHistoryEntry{EncodedKey: ""}},
		{"mismatched key", QueryHistoryEntry{Query: "foo", EncodedKey: "YmFy"}},
		{"negative count", QueryHistoryEntry{Query: "foo", EncodedKey: EncodeQueryKey("foo"), Count: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.entry.Validate(), ErrInvalidInput)
		})
	}
}

func TestTextSpan_IsLineBreak(t *testing.T) {
	assert.True(t, LineBreak.IsLineBreak())
	assert.False(t, TextSpan{Text: "\n", Emphasized: true}.IsLineBreak())
	assert.False(t, TextSpan{Text: "a"}.IsLineBreak())
}
