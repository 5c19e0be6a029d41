package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_ClosedPassesThrough(t *testing.T) {
	b := NewBreaker("website", DefaultBreakerConfig())
	require.NoError(t, b.Allow())
	b.Record(nil)
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker("website", BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow())
		b.Record(errors.New("fail"))
	}

	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker("website", BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})

	b.Record(errors.New("fail"))
	b.Record(errors.New("fail"))
	assert.Equal(t, 2, b.Failures())

	b.Record(nil)
	assert.Equal(t, 0, b.Failures())

	b.Record(errors.New("fail"))
	b.Record(errors.New("fail"))
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("enrichment", BreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Second})
	b.nowFunc = func() time.Time { return now }

	b.Record(errors.New("boom"))
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	now = now.Add(11 * time.Second)
	assert.Equal(t, HalfOpen, b.State())
	require.NoError(t, b.Allow())

	b.Record(nil)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("enrichment", BreakerConfig{FailureThreshold: 2, ResetTimeout: 10 * time.Second})
	b.nowFunc = func() time.Time { return now }

	b.Record(errors.New("a"))
	b.Record(errors.New("b"))
	now = now.Add(10 * time.Second)
	require.NoError(t, b.Allow())

	b.Record(errors.New("still down"))
	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreaker_ShouldTrip(t *testing.T) {
	notFound := errors.New("not found")
	b := NewBreaker("website", BreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       func(err error) bool { return !errors.Is(err, notFound) },
	})

	b.Record(notFound)
	assert.Equal(t, Closed, b.State())

	b.Record(errors.New("timeout"))
	assert.Equal(t, Open, b.State())
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(0, 0)
	assert.Equal(t, DefaultBreakerConfig().FailureThreshold, cfg.FailureThreshold)
	assert.Equal(t, DefaultBreakerConfig().ResetTimeout, cfg.ResetTimeout)

	cfg = FromConfig(2, 15)
	assert.Equal(t, 2, cfg.FailureThreshold)
	assert.Equal(t, 15*time.Second, cfg.ResetTimeout)
}

func TestBreakers_GetReturnsSameInstance(t *testing.T) {
	r := NewBreakers(DefaultBreakerConfig())

	var wg sync.WaitGroup
	got := make([]*Breaker, 10)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get("websearch")
		}(i)
	}
	wg.Wait()

	for _, b := range got {
		assert.Same(t, got[0], b)
	}
	assert.NotSame(t, got[0], r.Get("news"))
	assert.Equal(t, map[string]State{"websearch": Closed, "news": Closed}, r.States())
}
