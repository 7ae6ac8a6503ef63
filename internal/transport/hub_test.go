package transport

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 2)}
}

func TestHub_RegisterUnregisterTracksCount(t *testing.T) {
	h := NewHub(zerolog.Nop())
	require.Equal(t, 0, h.ClientCount())

	c := newTestClient()
	id := h.register(c)
	require.Equal(t, 1, h.ClientCount())

	h.unregister(id)
	require.Equal(t, 0, h.ClientCount())
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1, c2 := newTestClient(), newTestClient()
	h.register(c1)
	h.register(c2)

	h.Broadcast([]byte(`{"type":"ready"}`))

	require.Len(t, c1.send, 1)
	require.Len(t, c2.send, 1)
}

func TestHub_BroadcastDropsWhenQueueFull(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := newTestClient()
	c.id = h.register(c)

	h.Broadcast([]byte("1"))
	h.Broadcast([]byte("2"))
	// queue capacity is 2; this third broadcast must be dropped, not block.
	h.Broadcast([]byte("3"))

	require.Len(t, c.send, 2)
}

func TestHub_UnregisterUnknownIDIsNoop(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.unregister(999)
	require.Equal(t, 0, h.ClientCount())
}
