package recommend

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    []string
	}{
		{
			name:    "no trailer",
			summary: "検索結果によると、下記企業の事例が挙げられます。\n- **A社**は導入しました。",
			want:    []string{},
		},
		{
			name:    "trailer after text",
			summary: "本文です。\n{\"recommendations\": [\"x\",\"y\",\"z\"]}",
			want:    []string{"x", "y", "z"},
		},
		{
			name:    "trailer followed by closing sentence",
			summary: "本文\n{\"recommendations\": [\"データ分析\", \"需要予測\" , \"在庫最適化\"]}\n質問の意図とずれている場合は、遠慮なく別の表現で質問してくださいね。",
			want:    []string{"データ分析", "需要予測", "在庫最適化"},
		},
		{
			name:    "first trailer wins",
			summary: "{\"recommendations\": [\"a\"]}\n{\"recommendations\": [\"b\"]}",
			want:    []string{"a"},
		},
		{
			name:    "indented trailer is not a trailer",
			summary: "  {\"recommendations\": [\"a\"]}",
			want:    []string{},
		},
		{
			name:    "malformed json",
			summary: "text\n{\"recommendations\": [\"a\",",
			want:    []string{},
		},
		{
			name:    "wrong field type",
			summary: "{\"recommendations\": \"a, b\"}",
			want:    []string{},
		},
		{
			name:    "non-string items",
			summary: "{\"recommendations\": [1, 2]}",
			want:    []string{},
		},
		{
			name:    "null list",
			summary: "{\"recommendations\": null}",
			want:    []string{},
		},
		{
			name:    "trailing data after object",
			summary: "{\"recommendations\": [\"a\"]} extra",
			want:    []string{},
		},
		{
			name:    "carriage return line ending",
			summary: "text\r\n{\"recommendations\": [\"a\"]}\r\n",
			want:    []string{"a"},
		},
		{
			name:    "empty summary",
			summary: "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureLogs(t)
			got := Extract(tt.summary)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_LogsMalformedTrailer(t *testing.T) {
	buf := captureLogs(t)

	Extract("{\"recommendations\": oops}")

	assert.Contains(t, buf.String(), "[WARN] recommendations:")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("no trailer here")
	assert.ErrorIs(t, err, domain.ErrNoTrailer)

	_, err = Parse("{\"recommendations\": {}}")
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestSplitTrailer(t *testing.T) {
	body, trailer, ok := SplitTrailer("line one\nline two\n{\"recommendations\": [\"a\"]}\nafter")
	require.True(t, ok)
	assert.Equal(t, "line one\nline two", body)
	assert.Equal(t, "{\"recommendations\": [\"a\"]}", trailer)

	body, trailer, ok = SplitTrailer("only text")
	assert.False(t, ok)
	assert.Equal(t, "only text", body)
	assert.Empty(t, trailer)
}

func TestIsTrailerLine(t *testing.T) {
	assert.True(t, IsTrailerLine(`{"recommendations": []}`))
	assert.True(t, IsTrailerLine(`{"recommendations":[]}`))
	assert.False(t, IsTrailerLine(`{ "recommendations": []}`))
	assert.False(t, IsTrailerLine(`recommendations`))
}
