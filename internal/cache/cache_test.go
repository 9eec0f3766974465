package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open("", ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := newTestCache(t, time.Minute)

	p := &domain.Participant{
		ID:     "42",
		Name:   "Asha",
		Badges: []domain.Badge{{Name: "Gemini", BadgeType: domain.BadgeTypeSkill, Completed: true}},
		Rank:   domain.IntPtr(3),
	}
	require.NoError(t, c.PutParticipant(p))

	got, err := c.GetParticipant("42")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t, time.Minute)

	_, err := c.GetParticipant("missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_Expiry(t *testing.T) {
	c := newTestCache(t, time.Second)

	require.NoError(t, c.PutParticipant(&domain.Participant{ID: "1", Name: "A"}))
	_, err := c.GetParticipant("1")
	require.NoError(t, err)

	// Badger TTLs have one-second resolution.
	time.Sleep(2100 * time.Millisecond)

	_, err = c.GetParticipant("1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t, time.Minute)

	require.NoError(t, c.PutParticipant(&domain.Participant{ID: "1", Name: "A"}))
	require.NoError(t, c.PutParticipant(&domain.Participant{ID: "2", Name: "B"}))
	require.NoError(t, c.Clear())

	for _, id := range []string{"1", "2"} {
		_, err := c.GetParticipant(id)
		assert.ErrorIs(t, err, ErrMiss)
	}
}
