package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsScripts(t *testing.T) {
	out := Sanitize(`hello <script>alert(1)</script><b>world</b>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<b>world</b>")
}

func TestUniqueUint(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, UniqueUint([]uint{3, 1, 3, 2, 1}))
	assert.Equal(t, []uint{}, UniqueUint(nil))
}
