package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
)

var testMetrics = metrics.New()

func TestBroadcastDeliversToRoom(t *testing.T) {
	h := NewHub(logger.Default(), testMetrics, nil)

	c := newClient(nil)
	h.add(42, c)

	h.Broadcast(42, map[string]string{"type": "comment.added"})
	h.Broadcast(7, map[string]string{"type": "comment.added"})

	require.Len(t, c.send, 1)
	msg := <-c.send
	assert.Contains(t, string(msg), "comment.added")
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	h := NewHub(logger.Default(), testMetrics, nil)

	c := newClient(nil)
	for len(c.send) < cap(c.send) {
		c.send <- []byte("backlog")
	}
	h.add(3, c)

	h.Broadcast(3, "more")

	select {
	case <-c.done:
	default:
		t.Fatal("slow client was not shut down")
	}

	h.mu.RLock()
	_, roomExists := h.rooms[3]
	h.mu.RUnlock()
	assert.False(t, roomExists)
}

// Evicting a slow client from one goroutine while others are mid-send
// must never panic. The send channel stays open for the client's
// lifetime; eviction only signals done.
func TestBroadcastConcurrentEviction(t *testing.T) {
	h := NewHub(logger.Default(), testMetrics, nil)

	const leadID = 9
	for i := 0; i < 2000; i++ {
		c := newClient(nil)
		for len(c.send) < cap(c.send) {
			c.send <- []byte("backlog")
		}
		h.add(leadID, c)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Broadcast(leadID, map[string]int{"n": 1})
		}()
	}
	wg.Wait()

	h.mu.RLock()
	_, roomExists := h.rooms[leadID]
	h.mu.RUnlock()
	assert.False(t, roomExists)
}

func TestRemoveIsIdempotent(t *testing.T) {
	h := NewHub(logger.Default(), testMetrics, nil)

	c := newClient(nil)
	h.add(5, c)
	h.remove(5, c)
	h.remove(5, c)

	select {
	case <-c.done:
	default:
		t.Fatal("done not signalled after remove")
	}
}
