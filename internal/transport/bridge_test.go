package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/view"
)

type fakeViewSource struct{ v view.View }

func (f *fakeViewSource) LatestView() view.View { return f.v }

func TestBridge_StateEventReachesHubClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newTestClient()
	c.id = hub.register(c)

	bridge := NewBridge(hub, &fakeViewSource{}, zerolog.Nop())

	bridge.HandleStateEvent(pwire.NodeAdded{ID: 1})

	require.Eventually(t, func() bool {
		return len(c.send) == 1
	}, time.Second, 5*time.Millisecond)

	data := <-c.send
	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "node_added", env["type"])

	bridge.batch.Stop()
}

func TestBridge_RunSkipsBroadcastWithNoClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	bridge := NewBridge(hub, &fakeViewSource{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	bridge.Run(ctx, 5*time.Millisecond)
	// No assertion beyond "doesn't panic/block forever" — there are no
	// clients to receive anything, so this only exercises the empty path.
}

func TestBridge_RunBroadcastsViewToConnectedClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newTestClient()
	hub.register(c)

	bridge := NewBridge(hub, &fakeViewSource{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	bridge.Run(ctx, 5*time.Millisecond)

	require.NotEmpty(t, c.send)
	data := <-c.send
	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "view", env["type"])
}
