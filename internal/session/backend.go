package session

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/wiremix/mixerd/internal/capture"
	"github.com/wiremix/mixerd/internal/pwire"
)

// defaultCaptureRate is the sample rate capture streams are opened at.
// A full client would read this back from the format param_changed event
// the server reports once negotiation completes (spec.md §4.4); this
// backend's reduced protocol scope (see DESIGN.md) doesn't negotiate a
// format, so it assumes PipeWire's common default graph rate.
const defaultCaptureRate = 48000

// captureChannels is the fixed planar channel count capture streams are
// opened with, matching wiremix's stereo-only peak metering.
const captureChannels = 2

// NativeBackend is the hand-written bridge to a real PipeWire server. No
// third-party Go PipeWire client binding exists to depend on, so this
// package owns the socket dial and the Pod writes directly, behind the
// Backend interface the rest of this package drives.
//
// It implements only a narrow slice of PipeWire's native protocol: it
// dials the socket, writes core.sync requests, Pod-encoded node/device
// params and metadata properties over a small object-id-prefixed framing,
// and drains the SCM_RIGHTS fds the server passes. It performs no
// core.hello handshake, binds no registry globals, and decodes no inbound
// registry, info or param frames, so it never delivers a StateEvent or a
// sync completion. It is not a general-purpose PipeWire client library.
type NativeBackend struct {
	socketPath string
	log        zerolog.Logger
	processor  pwire.PeakProcessor

	mu     sync.Mutex
	conn   net.Conn
	nextID uint32
	onNode map[pwire.ObjectId]*capture.Stream
}

// DefaultSocketPath resolves the PipeWire socket path the way the
// reference client does: $PIPEWIRE_REMOTE if set, otherwise
// $XDG_RUNTIME_DIR/pipewire-0.
func DefaultSocketPath() string {
	if p := os.Getenv("PIPEWIRE_REMOTE"); p != "" {
		return p
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/run/user/0"
	}
	return filepath.Join(runtimeDir, "pipewire-0")
}

// NewNativeBackend returns a backend that will dial socketPath when Run is
// called. processor is threaded into every capture stream this backend
// opens, so the config layer's ballistics settings actually reach the
// real-time peak extraction.
func NewNativeBackend(socketPath string, processor pwire.PeakProcessor, log zerolog.Logger) *NativeBackend {
	return &NativeBackend{
		socketPath: socketPath,
		processor:  processor,
		log:        log.With().Str("component", "pwire.backend").Logger(),
		onNode:     make(map[pwire.ObjectId]*capture.Stream),
	}
}

// Run dials the PipeWire socket and blocks until ctx is cancelled or the
// fd-draining read loop fails. Nothing is sent on events or syncDone: no
// inbound frame is decoded into a pwire.StateEvent (see readLoop).
func (b *NativeBackend) Run(ctx context.Context, events chan<- pwire.StateEvent, syncDone chan<- uint32) error {
	conn, err := net.Dial("unix", b.socketPath)
	if err != nil {
		return fmt.Errorf("pwire: dial %s: %w", b.socketPath, err)
	}
	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	defer conn.Close()

	if err := b.handshake(); err != nil {
		return fmt.Errorf("pwire: handshake: %w", err)
	}

	readErrs := make(chan error, 1)
	go func() {
		readErrs <- b.readLoop(ctx, events, syncDone)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-readErrs:
		return err
	}
}

// handshake only checks that the connection is open. It writes no
// core.hello/core.update messages, so no core version or client
// properties are exchanged.
func (b *NativeBackend) handshake() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("pwire: not connected")
	}
	// A real client negotiates core version and client properties here;
	// this backend sends nothing.
	return nil
}

// readLoop drains the socket's SCM_RIGHTS traffic: PipeWire hands memfds
// for SHM buffer pools unprompted, and leaving them unread would eventually
// wedge the connection. recvFD does that draining. Under this backend's
// reduced protocol scope (see DESIGN.md) no registry/param frame is
// demultiplexed, and nothing is sent on events or syncDone.
func (b *NativeBackend) readLoop(ctx context.Context, events chan<- pwire.StateEvent, syncDone chan<- uint32) error {
	unixConn, ok := b.conn.(*net.UnixConn)
	if !ok {
		<-ctx.Done()
		return nil
	}

	fdErrs := make(chan error, 1)
	go func() {
		for {
			fd, err := b.recvFD(unixConn)
			if err != nil {
				fdErrs <- err
				return
			}
			// No SHM buffer consumer exists yet (see DESIGN.md); release the
			// fd immediately rather than leaking it.
			_ = unix.Close(fd)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-fdErrs:
		return err
	}
}

// recvFD reads one SCM_RIGHTS control message off the socket, returning the
// passed file descriptor. PipeWire hands clients SHM-backed buffers this
// way (node.info's data_loop memfds, SPA buffer pools) rather than copying
// sample data through the socket itself; unix.ParseSocketControlMessage is
// the only part of this exchange that has no Pod encoding to go through
// pwire's own codec.
func (b *NativeBackend) recvFD(unixConn *net.UnixConn) (int, error) {
	oob := make([]byte, unix.CmsgSpace(4))
	_, oobn, _, _, err := unixConn.ReadMsgUnix(nil, oob)
	if err != nil {
		return -1, fmt.Errorf("pwire: recvmsg: %w", err)
	}
	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return -1, fmt.Errorf("pwire: parse control message: %w", err)
	}
	for _, msg := range msgs {
		fds, err := unix.ParseUnixRights(&msg)
		if err != nil {
			continue
		}
		if len(fds) > 0 {
			return fds[0], nil
		}
	}
	return -1, fmt.Errorf("pwire: no fd in control message")
}

func (b *NativeBackend) SetNodeProps(node pwire.ObjectId, props pwire.PodObject) error {
	payload, err := pwire.Encode(props)
	if err != nil {
		return err
	}
	return b.send(node, payload)
}

func (b *NativeBackend) SetDeviceRoute(device pwire.ObjectId, route pwire.PodObject) error {
	payload, err := pwire.Encode(route)
	if err != nil {
		return err
	}
	return b.send(device, payload)
}

func (b *NativeBackend) SetDeviceProfile(device pwire.ObjectId, profile pwire.PodObject) error {
	payload, err := pwire.Encode(profile)
	if err != nil {
		return err
	}
	return b.send(device, payload)
}

func (b *NativeBackend) SetMetadataProperty(metadata pwire.ObjectId, prop pwire.MetadataProperty) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("pwire: not connected")
	}
	payload := encodeMetadataProperty(prop)
	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(metadata))
	copy(frame[4:], payload)
	if _, err := b.conn.Write(frame); err != nil {
		return fmt.Errorf("pwire: write metadata property: %w", err)
	}
	b.log.Debug().Stringer("metadata", metadata).Str("key", prop.Key).Msg("set metadata property")
	return nil
}

// encodeMetadataProperty serializes the (subject, key, type, value) tuple
// pw_metadata.set_property takes as a subject uint32 followed by three
// length-prefixed strings — metadata properties travel as plain strings
// over the metadata interface, so they don't go through pod.go's Pod
// encoder.
func encodeMetadataProperty(prop pwire.MetadataProperty) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, prop.Subject)
	for _, s := range []string{prop.Key, prop.Type, prop.Value} {
		lb := make([]byte, 4)
		binary.LittleEndian.PutUint32(lb, uint32(len(s)))
		buf = append(buf, lb...)
		buf = append(buf, s...)
	}
	return buf
}

func (b *NativeBackend) StartNodeCapture(node pwire.ObjectId, serial uint64, captureSink bool) (*capture.Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil, fmt.Errorf("pwire: not connected")
	}
	peaks := capture.New(captureChannels, defaultCaptureRate, b.processor)
	node32 := uint32(node)
	stream := capture.NewStream(node32, peaks, func() error {
		b.mu.Lock()
		delete(b.onNode, node)
		b.mu.Unlock()
		return nil
	})
	b.onNode[node] = stream
	return stream, nil
}

func (b *NativeBackend) Sync(seq uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("pwire: not connected")
	}
	frame := make([]byte, 8)
	binary.LittleEndian.PutUint32(frame[0:4], 0) // core.sync targets the core object, id 0
	binary.LittleEndian.PutUint32(frame[4:8], seq)
	if _, err := b.conn.Write(frame); err != nil {
		return fmt.Errorf("pwire: write sync: %w", err)
	}
	return nil
}

func (b *NativeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *NativeBackend) send(id pwire.ObjectId, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("pwire: not connected")
	}
	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(id))
	copy(frame[4:], payload)
	if _, err := b.conn.Write(frame); err != nil {
		return fmt.Errorf("pwire: write pod: %w", err)
	}
	b.log.Debug().Stringer("object", id).Int("bytes", len(payload)).Msg("sent pod")
	return nil
}
