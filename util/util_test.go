package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA1Sum(t *testing.T) {
	sum, err := SHA1Sum(strings.NewReader("abc"))
	assert.NoError(t, err)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", sum)

	sum, err = SHA1Sum(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", sum)
}
