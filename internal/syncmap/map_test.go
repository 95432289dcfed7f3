package syncmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_SetIfAbsent(t *testing.T) {
	m := New[string, int]()

	accepted := 0
	accept := func() bool { accepted++; return true }
	v, ok := m.SetIfAbsent("a", 1, accept)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.SetIfAbsent("a", 2, accept)
	assert.False(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, accepted)

	v, ok = m.SetIfAbsent("b", 3, func() bool { return false })
	assert.False(t, ok)
	assert.Equal(t, 0, v)
	_, found := m.Get("b")
	assert.False(t, found)

	got, found := m.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, got)
}

func TestMap_PutIf(t *testing.T) {
	m := New[string, int]()
	m.Set("a", -1)

	live := func(v int) bool { return v >= 0 }
	v, ok := m.PutIf("a", 1, live, nil)
	assert.True(t, ok, "a stale value is replaced")
	assert.Equal(t, 1, v)

	v, ok = m.PutIf("a", 2, live, nil)
	assert.False(t, ok)
	assert.Equal(t, 1, v)
}

func TestMap_DeleteIf(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)

	assert.False(t, m.DeleteIf("a", func(v int) bool { return v == 2 }))
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.DeleteIf("a", func(v int) bool { return v == 1 }))
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.DeleteIf("missing", func(int) bool { return true }))
}

func TestMap_Concurrent(t *testing.T) {
	m := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.SetIfAbsent(i, i, nil)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 64, m.Len())
	assert.Len(t, m.Keys(), 64)
	assert.Len(t, m.Filter(func(k int) bool { return k%2 == 0 }), 32)
}
