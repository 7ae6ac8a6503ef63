package pwire

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// SocketWatcher watches the directory a PipeWire server socket lives in
// (normally `$XDG_RUNTIME_DIR/pipewire-0`) and reports when the socket
// appears or disappears, so the daemon can (re)dial without polling.
type SocketWatcher struct {
	dir      string
	socket   string
	watcher  *fsnotify.Watcher
	log      zerolog.Logger
}

// NewSocketWatcher builds a watcher for socketPath (the full path to the
// PipeWire socket, e.g. "/run/user/1000/pipewire-0").
func NewSocketWatcher(socketPath string, log zerolog.Logger) (*SocketWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(socketPath)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &SocketWatcher{
		dir:     dir,
		socket:  filepath.Base(socketPath),
		watcher: w,
		log:     log.With().Str("component", "pwire.watch").Logger(),
	}, nil
}

// Run blocks, sending true on changes whenever the socket transitions from
// absent to present and false when it transitions from present to absent.
// It exits when ctx is cancelled or the underlying watcher errors out.
func (s *SocketWatcher) Run(ctx context.Context, changes chan<- bool) {
	defer s.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != s.socket {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create) != 0:
				s.log.Debug().Str("socket", ev.Name).Msg("pipewire socket appeared")
				select {
				case changes <- true:
				case <-ctx.Done():
					return
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.log.Debug().Str("socket", ev.Name).Msg("pipewire socket disappeared")
				select {
				case changes <- false:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("socket watch error")
		}
	}
}

// Close stops the watcher.
func (s *SocketWatcher) Close() error {
	return s.watcher.Close()
}
