// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock(5)
	assert.Equal(t, uint64(5), c.Epoch())
	assert.Equal(t, uint64(7), c.Advance(2))
	assert.Equal(t, uint64(7), c.Epoch())
}

func TestTimeClock(t *testing.T) {
	_, err := NewTimeClock(time.Now(), 0)
	require.Error(t, err)

	start := time.Unix(1_700_000_000, 0)
	c, err := NewTimeClock(start, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, c.Duration())

	tests := []struct {
		now  time.Time
		want uint64
	}{
		{start.Add(-time.Minute), 0},
		{start, 0},
		{start.Add(59 * time.Minute), 0},
		{start.Add(time.Hour), 1},
		{start.Add(49*time.Hour + time.Second), 49},
	}
	for _, tt := range tests {
		c.now = func() time.Time { return tt.now }
		assert.Equal(t, tt.want, c.Epoch(), "at %v", tt.now)
	}
}
