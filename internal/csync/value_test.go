package csync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Parallel()

	type status struct {
		Message string
		Rows    int
	}

	v := NewValue(status{Message: "loading"})
	require.Equal(t, "loading", v.Get().Message)

	v.Set(status{Message: "ready", Rows: 10})
	got := v.Update(func(s status) status {
		s.Rows++
		return s
	})
	require.Equal(t, status{Message: "ready", Rows: 11}, got)
	require.Equal(t, got, v.Get())
}

func TestNewValue_RejectsReferenceTypes(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]func(){
		"pointer": func() { NewValue(&struct{}{}) },
		"slice":   func() { NewValue([]int{1}) },
		"map":     func() { NewValue(map[string]int{}) },
	} {
		require.Panics(t, fn, name)
	}
	require.NotPanics(t, func() { NewValue("") })
}

func TestValue_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v.Update(func(n int) int { return n + 1 })
		}()
		go func() {
			defer wg.Done()
			_ = v.Get()
		}()
	}
	wg.Wait()
	require.Equal(t, 50, v.Get())
}
