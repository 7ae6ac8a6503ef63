package pwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaClass_Duplex(t *testing.T) {
	mc := ParseMediaClass("Audio/Duplex")
	require.Equal(t, MediaClassDuplex, mc)
	require.True(t, mc.IsSink())
	require.True(t, mc.IsSource())
	require.True(t, mc.IsEndpoint())
}

func TestMediaClass_SinkIsNotSource(t *testing.T) {
	mc := ParseMediaClass("Audio/Sink")
	require.True(t, mc.IsSink())
	require.False(t, mc.IsSource())
}

func TestMediaClass_SourceVirtualIsSourceOnly(t *testing.T) {
	mc := ParseMediaClass("Audio/Source/Virtual")
	require.False(t, mc.IsSink())
	require.True(t, mc.IsSource())
}

func TestMediaClass_UnknownIsOther(t *testing.T) {
	require.Equal(t, MediaClassOther, ParseMediaClass("Audio/Sink/Virtual"))
}
