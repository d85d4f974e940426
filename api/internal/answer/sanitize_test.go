package answer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean array is unchanged",
			in:   `[{"expr": "2 + 2", "result": "4", "assign": false}]`,
			want: `[{"expr": "2 + 2", "result": "4", "assign": false}]`,
		},
		{
			name: "fenced array",
			in:   "```json\n[{\"expr\": \"x\", \"result\": \"5\", \"assign\": true}]\n```",
			want: `[{"expr": "x", "result": "5", "assign": true}]`,
		},
		{
			name: "generic fence without language tag",
			in:   "```\n[{\"expr\": \"1\"}]\n```",
			want: `[{"expr": "1"}]`,
		},
		{
			name: "bare object wrapped into array",
			in:   `{"expr": "x", "result": "5", "assign": true}`,
			want: `[{"expr": "x", "result": "5", "assign": true}]`,
		},
		{
			name: "chatter around the array",
			in:   "Sure! Here is the answer:\n[{\"expr\": \"2\", \"result\": \"2\"}]\nHope that helps.",
			want: `[{"expr": "2", "result": "2"}]`,
		},
		{
			name: "chatter around a bare object",
			in:   "The result is {\"expr\": \"2\", \"result\": \"2\"} as requested",
			want: `[{"expr": "2", "result": "2"}]`,
		},
		{
			name: "nested objects keep depth",
			in:   `{"a": {"b": {"c": 1}}}`,
			want: `[{"a": {"b": {"c": 1}}}]`,
		},
		{
			name: "no brackets at all",
			in:   "I could not understand the input.",
			want: "[]",
		},
		{
			name: "empty input",
			in:   "",
			want: "[]",
		},
		{
			name: "truncated object never closes",
			in:   `{"expr": "2 + 2", "result": "4"`,
			want: "[]",
		},
		{
			name: "truncated array never closes",
			in:   `[{"expr": "2"}`,
			want: "[]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	in := `[{"expr": "2 + 2", "result": "4", "assign": false}]`
	once := Sanitize(in)
	assert.Equal(t, once, Sanitize(once))
}

func TestSanitizeEmptyArrayDecodes(t *testing.T) {
	out := Sanitize("no structure here")
	var answers []Answer
	require.NoError(t, json.Unmarshal([]byte(out), &answers))
	assert.Empty(t, answers)
}

func TestDecode(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		answers := Decode(`[{"expr": "x", "result": "5", "assign": true}]`, "x = 5")
		require.Len(t, answers, 1)
		assert.Equal(t, "x", answers[0].Expr)
		assert.Equal(t, "5", answers[0].Result)
		assert.True(t, answers[0].Assign)
	})

	t.Run("unparseable response degrades", func(t *testing.T) {
		answers := Decode("the model rambled with no JSON", "2 + 2")
		require.Len(t, answers, 1)
		assert.Equal(t, "2 + 2", answers[0].Expr)
		assert.Contains(t, answers[0].Result, ParseFailure)
		assert.False(t, answers[0].Assign)
	})

	t.Run("missing result gets the placeholder", func(t *testing.T) {
		answers := Decode(`[{"expr": "2 + 2"}]`, "2 + 2")
		require.Len(t, answers, 1)
		assert.Equal(t, ResultPlaceholder, answers[0].Result)
	})
}
