package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeCachesWithinTTL(t *testing.T) {
	c := New[int](time.Minute)
	calls := 0
	compute := func() (int, error) { calls++; return 42, nil }

	v, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeExpires(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	calls := 0
	compute := func() (int, error) { calls++; return calls, nil }

	_, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	v, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestErrorsNotCached(t *testing.T) {
	c := New[int](time.Minute)
	calls := 0
	_, err := c.GetOrCompute("k", func() (int, error) { calls++; return 0, errors.New("boom") })
	require.Error(t, err)
	v, err := c.GetOrCompute("k", func() (int, error) { calls++; return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestConcurrentMissesCollapse(t *testing.T) {
	c := New[int](time.Minute)
	var calls int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute("k", func() (int, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(5 * time.Millisecond)
				return 99, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c := New[int](0)
	calls := 0
	for i := 0; i < 3; i++ {
		_, err := c.GetOrCompute("k", func() (int, error) { calls++; return calls, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
