package idhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, Hash("cover:240"), Hash("cover:240"))
	assert.Equal(t, Hash("cover:240"), HashBytes([]byte("cover:240")))
}

func TestHashDiffers(t *testing.T) {
	assert.NotEqual(t, Hash("cover:240"), Hash("cover:480"))
	assert.NotEqual(t, Hash(""), Hash(" "))
}

func TestHashIsFilenameSafe(t *testing.T) {
	id := Hash("https://cdn.myanimelist.net/images/anime/1223/96541.jpg:240:q=80")
	assert.NotEmpty(t, id)
	for _, r := range id {
		ok := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		assert.True(t, ok, "unexpected character %q", r)
	}
}
