package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefreshTestMode(t *testing.T) {
	t.Setenv("FABRIQ_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv("FABRIQ_TEST_MODE", "")
	RefreshTestMode()
	require.False(t, InTestMode())
}
