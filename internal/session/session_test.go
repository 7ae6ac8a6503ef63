package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/capture"
	"github.com/wiremix/mixerd/internal/pwire"
)

type fakeBackend struct {
	events       chan<- pwire.StateEvent
	syncDone     chan<- uint32
	captureCalls []pwire.ObjectId
	nodePropsCalls []pwire.ObjectId
}

func (f *fakeBackend) Run(ctx context.Context, events chan<- pwire.StateEvent, syncDone chan<- uint32) error {
	f.events = events
	f.syncDone = syncDone
	syncDone <- 0 // initial sync completes immediately
	<-ctx.Done()
	return nil
}

func (f *fakeBackend) SetNodeProps(node pwire.ObjectId, props pwire.PodObject) error {
	f.nodePropsCalls = append(f.nodePropsCalls, node)
	return nil
}
func (f *fakeBackend) SetDeviceRoute(device pwire.ObjectId, route pwire.PodObject) error { return nil }
func (f *fakeBackend) SetDeviceProfile(device pwire.ObjectId, profile pwire.PodObject) error {
	return nil
}
func (f *fakeBackend) SetMetadataProperty(metadata pwire.ObjectId, prop pwire.MetadataProperty) error {
	return nil
}

func (f *fakeBackend) StartNodeCapture(node pwire.ObjectId, serial uint64, captureSink bool) (*capture.Stream, error) {
	f.captureCalls = append(f.captureCalls, node)
	return capture.NewStream(uint32(node), capture.New(2, 48000, nil), func() error { return nil }), nil
}

func (f *fakeBackend) Sync(seq uint32) error { return nil }
func (f *fakeBackend) Close() error          { return nil }

func TestS6_ReadyEmittedExactlyOnce(t *testing.T) {
	backend := &fakeBackend{}
	sess := New(backend, true, nil, zerolog.Nop())

	var readyCount int
	sess.OnStateEvent(func(ev pwire.StateEvent) {
		if _, ok := ev.(pwire.Ready); ok {
			readyCount++
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = sess.Run(ctx)

	require.Equal(t, 1, readyCount)
}

func TestS3_CaptureStartsOnLink(t *testing.T) {
	backend := &fakeBackend{}
	sess := New(backend, true, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sess.Run(ctx)
	time.Sleep(20 * time.Millisecond) // let the loop start and consume the initial sync

	sinkProps := pwire.FromDict([][2]string{
		{"media.class", "Audio/Sink"},
		{"object.serial", "42"},
	})
	sess.events <- pwire.NodeAdded{ID: 7, Props: sinkProps}
	time.Sleep(10 * time.Millisecond)
	require.Empty(t, backend.captureCalls)

	sess.events <- pwire.LinkAdded{ID: 50, OutputNode: 9, InputNode: 7}
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, []pwire.ObjectId{7}, backend.captureCalls)
}

func TestSetNodeMute_DispatchesToBackend(t *testing.T) {
	backend := &fakeBackend{}
	sess := New(backend, true, nil, zerolog.Nop())
	sess.execute(pwire.SetNodeMute{Node: 3, Mute: true})
	require.Equal(t, []pwire.ObjectId{3}, backend.nodePropsCalls)
}
