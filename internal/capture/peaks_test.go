package capture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/pwire"
)

func TestPeakCapture_SkipsFirstBuffer(t *testing.T) {
	pc := New(1, 48000, nil)
	pc.Process([]float32{1.0})
	require.Equal(t, float32(0), pc.Snapshot()[0], "first buffer after connect is discarded")
	require.False(t, pc.TakeDirty())
}

func TestPeakCapture_ExtractsPerChannelInterleaved(t *testing.T) {
	pc := New(2, 48000, nil)
	pc.Process([]float32{0, 0}) // discarded warm-up buffer
	pc.Process([]float32{0.1, -0.9, 0.2, 0.3})

	peaks := pc.Snapshot()
	require.InDelta(t, 0.2, peaks[0], 1e-6)
	require.InDelta(t, 0.9, peaks[1], 1e-6)
}

func TestPeakCapture_DirtyCoalescesAcrossMultipleBuffers(t *testing.T) {
	pc := New(1, 48000, nil)
	pc.Process([]float32{0})
	pc.Process([]float32{0.1})
	pc.Process([]float32{0.2})
	pc.Process([]float32{0.05})

	require.True(t, pc.TakeDirty())
	require.False(t, pc.TakeDirty(), "dirty must clear after one consume")
}

func TestPeakCapture_BallisticsSmoothsRelease(t *testing.T) {
	pc := New(1, 48000, pwire.NewBallisticsProcessor(0, 0.9))
	pc.Process([]float32{0})
	pc.Process([]float32{1.0})
	require.Equal(t, float32(1.0), pc.Snapshot()[0])

	pc.Process([]float32{0.0})
	afterFall := pc.Snapshot()[0]
	require.Greater(t, afterFall, float32(0.0))
	require.Less(t, afterFall, float32(1.0))
}

func TestPeakCapture_FirstRealBufferInitializesWithoutRisingFromZero(t *testing.T) {
	// A slow attack coefficient would make the needle crawl up from 0 over
	// many buffers if the filter didn't initialize to the first observed
	// peak — this pins the §4.4 step-4 fix down.
	pc := New(1, 48000, pwire.NewBallisticsProcessor(0.99, 0.9))
	pc.Process([]float32{0}) // discarded warm-up buffer
	pc.Process([]float32{0.8})

	require.Equal(t, float32(0.8), pc.Snapshot()[0])
}
