package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVersionPrefersLdflags(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "1.2.3"
	assert.Equal(t, "1.2.3", resolveVersion())

	Version = ""
	assert.NotEmpty(t, resolveVersion(), "falls back to build info or devel")
}
