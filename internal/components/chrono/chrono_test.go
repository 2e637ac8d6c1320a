package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	clock := NewStandardImpl()
	before := time.Now()
	now := clock.Now()
	require.False(t, now.Before(before.Add(-time.Second)))
	require.Equal(t, time.Local, clock.Location())
}

func TestFixedImpl(t *testing.T) {
	instant := time.Date(2024, time.August, 26, 12, 0, 0, 0, time.UTC)
	clock := FixedImpl{Time: instant}
	require.Equal(t, instant, clock.Now())
	require.Equal(t, time.UTC, clock.Location())
}
