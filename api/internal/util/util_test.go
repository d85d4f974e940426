package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: `[{"a": 1}]`, want: `[{"a": 1}]`},
		{name: "json tagged", in: "```json\n[{\"a\": 1}]\n```", want: `[{"a": 1}]`},
		{name: "bare fence", in: "```\n[{\"a\": 1}]\n```", want: `[{"a": 1}]`},
		{name: "fence on one line", in: "```[{\"a\": 1}]```", want: `[{"a": 1}]`},
		{name: "surrounding whitespace", in: "  ```json\n{}\n```  ", want: "{}"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x01}
	std := base64.StdEncoding.EncodeToString(payload)

	t.Run("plain base64", func(t *testing.T) {
		got, hint, err := DecodeBase64MaybeDataURL(std)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Empty(t, hint)
	})

	t.Run("data URL carries the mime hint", func(t *testing.T) {
		got, hint, err := DecodeBase64MaybeDataURL("data:image/png;base64," + std)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, "image/png", hint)
	})

	t.Run("url-safe alphabet", func(t *testing.T) {
		raw := []byte{0xFB, 0xFF, 0x00}
		got, _, err := DecodeBase64MaybeDataURL(base64.URLEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := DecodeBase64MaybeDataURL("!!nope!!")
		assert.Error(t, err)
	})
}

func TestSniffMimeHTTP(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/png",
		SniffMimeHTTP([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP([]byte("plain text")))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP(nil))
}

func TestPickMIME(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	assert.Equal(t, "image/webp", PickMIME("image/webp", "image/png", pngBytes))
	assert.Equal(t, "image/png", PickMIME("", "image/png", nil))
	assert.Equal(t, "image/png", PickMIME("", "", pngBytes))
	assert.Equal(t, "image/jpeg", PickMIME("", "", nil))
}
