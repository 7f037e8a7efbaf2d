package credentials

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()

	store.Set("access-1", "refresh-1")

	access, ok := store.Access()
	require.True(t, ok)
	assert.Equal(t, "access-1", access)

	refresh, ok := store.RefreshToken()
	require.True(t, ok)
	assert.Equal(t, "refresh-1", refresh)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore()
	store.Set("access-1", "refresh-1")

	store.Clear()

	_, ok := store.Access()
	assert.False(t, ok)
	_, ok = store.RefreshToken()
	assert.False(t, ok)
	_, ok = store.Pair()
	assert.False(t, ok)
}

func TestStore_EmptyStore(t *testing.T) {
	store := NewStore()

	access, ok := store.Access()
	assert.False(t, ok)
	assert.Empty(t, access)

	refresh, ok := store.RefreshToken()
	assert.False(t, ok)
	assert.Empty(t, refresh)
}

func TestStore_SetWithoutRefreshKeepsExisting(t *testing.T) {
	store := NewStore()
	store.Set("access-1", "refresh-1")

	store.Set("access-2", "")

	pair, ok := store.Pair()
	require.True(t, ok)
	assert.Equal(t, Pair{Access: "access-2", Refresh: "refresh-1"}, pair)
}

func TestStore_SetAccessOnly(t *testing.T) {
	store := NewStore()

	store.Set("access-1", "")

	access, ok := store.Access()
	require.True(t, ok)
	assert.Equal(t, "access-1", access)

	_, ok = store.RefreshToken()
	assert.False(t, ok, "no refresh credential was ever supplied")
}

func TestStore_SetEmptyAccessClears(t *testing.T) {
	store := NewStore()
	store.Set("access-1", "refresh-1")

	store.Set("", "refresh-2")

	_, ok := store.Pair()
	assert.False(t, ok)
}

func TestStore_WithPair(t *testing.T) {
	notified := 0
	store := NewStore(
		WithPair(Pair{Access: "seed", Refresh: "seed-refresh"}),
		WithObserver(func(Pair, bool) { notified++ }),
	)

	pair, ok := store.Pair()
	require.True(t, ok)
	assert.Equal(t, "seed", pair.Access)
	assert.Equal(t, "seed-refresh", pair.Refresh)
	assert.Zero(t, notified, "seeding must not notify observers")
}

func TestStore_Observer(t *testing.T) {
	type event struct {
		pair Pair
		live bool
	}
	var events []event

	store := NewStore(WithObserver(func(p Pair, live bool) {
		events = append(events, event{pair: p, live: live})
	}))

	store.Set("a1", "r1")
	store.Set("a2", "")
	store.Clear()

	require.Len(t, events, 3)
	assert.Equal(t, event{pair: Pair{Access: "a1", Refresh: "r1"}, live: true}, events[0])
	assert.Equal(t, event{pair: Pair{Access: "a2", Refresh: "r1"}, live: true}, events[1])
	assert.Equal(t, event{pair: Pair{}, live: false}, events[2])
}

// TestStore_ConcurrentPairsNeverMix checks that a reader never sees the
// access credential of one pair next to the refresh credential of another.
func TestStore_ConcurrentPairsNeverMix(t *testing.T) {
	store := NewStore()
	store.Set("access-0", "refresh-0")

	const writers = 8
	const iterations = 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				n := fmt.Sprintf("%d-%d", w, i)
				store.Set("access-"+n, "refresh-"+n)
			}
		}(w)
	}

	errs := make(chan string, writers)
	for r := 0; r < writers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				pair, ok := store.Pair()
				if !ok {
					continue
				}
				if pair.Access[len("access-"):] != pair.Refresh[len("refresh-"):] {
					errs <- fmt.Sprintf("mixed pair observed: %+v", pair)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

// TestStore_ObserverSeesChangesInOrder holds the first notification open
// while a second writer arrives. The last persisted pair must be the one in
// memory.
func TestStore_ObserverSeesChangesInOrder(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var persisted []Pair
	store := NewStore(WithObserver(func(p Pair, live bool) {
		if p.Access == "access-A" {
			close(entered)
			<-release
		}
		mu.Lock()
		persisted = append(persisted, p)
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Set("access-A", "refresh-A")
	}()
	<-entered

	bDone := make(chan struct{})
	go func() {
		defer close(bDone)
		store.Set("access-B", "refresh-B")
	}()

	select {
	case <-bDone:
		t.Fatal("second Set completed while the first notification was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()
	<-bDone

	inMemory, ok := store.Pair()
	require.True(t, ok)
	assert.Equal(t, Pair{Access: "access-B", Refresh: "refresh-B"}, inMemory)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, persisted, 2)
	assert.Equal(t, inMemory, persisted[len(persisted)-1])
}

func TestStore_ObserverMayReadStore(t *testing.T) {
	var seen Pair
	var store *Store
	store = NewStore(WithObserver(func(Pair, bool) {
		seen, _ = store.Pair()
	}))

	store.Set("access-1", "refresh-1")
	assert.Equal(t, Pair{Access: "access-1", Refresh: "refresh-1"}, seen)

	store.Clear()
	assert.Equal(t, Pair{}, seen)
}

func TestPair_HasRefresh(t *testing.T) {
	assert.True(t, Pair{Access: "a", Refresh: "r"}.HasRefresh())
	assert.False(t, Pair{Access: "a"}.HasRefresh())
}
