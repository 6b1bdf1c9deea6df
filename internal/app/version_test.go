package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.4.0 (commit: 9c1d2e, built: 2024-03-01)", formatVersion("1.4.0", "9c1d2e", "2024-03-01"))
}

func TestCommitOrVCS_PrefersLinkedCommit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc123", commitOrVCS("abc123"))
	assert.NotEmpty(t, commitOrVCS("unknown"))
}
