package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/view"
)

func TestExporter_DisabledWhenUnconfigured(t *testing.T) {
	e, err := New(context.Background(), Config{}, zerolog.Nop())
	require.NoError(t, err)
	require.False(t, e.Enabled())
}

func TestExporter_WritesLocalSnapshot(t *testing.T) {
	dir := t.TempDir()
	e, err := New(context.Background(), Config{LocalDir: dir}, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, e.Enabled())

	v := view.View{DefaultSinkName: "alsa_output.usb"}
	require.NoError(t, e.Export(context.Background(), v))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var got view.View
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "alsa_output.usb", got.DefaultSinkName)
}
