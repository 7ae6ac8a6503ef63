package pwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncRegistry_SingleReadyEmission(t *testing.T) {
	sr := NewSyncRegistry()
	a := sr.Issue()
	b := sr.Issue()

	require.False(t, sr.Done(a), "still one outstanding")
	require.True(t, sr.Done(b), "last outstanding sync fires ready exactly once")

	// A later, unrelated sync completing must never fire Ready again.
	c := sr.Issue()
	require.False(t, sr.Done(c))
	require.True(t, sr.ReadyFired())
}

func TestSyncRegistry_OutOfOrderCompletion(t *testing.T) {
	sr := NewSyncRegistry()
	a := sr.Issue()
	b := sr.Issue()
	c := sr.Issue()

	require.False(t, sr.Done(b))
	require.False(t, sr.Done(a))
	require.True(t, sr.Done(c))
}
