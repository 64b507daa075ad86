package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateHash(t *testing.T) {
	h := GenerateHash("a", "b")
	assert.Len(t, h, 64)
	assert.Equal(t, h, GenerateHash("a", "b"))
	assert.NotEqual(t, h, GenerateHash("b", "a"))
	assert.NotEqual(t, GenerateHash("ab", ""), GenerateHash("a", "b"))
}
