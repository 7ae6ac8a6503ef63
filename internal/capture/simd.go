// Package capture extracts per-channel peak levels from interleaved F32LE
// audio buffers delivered by a PipeWire capture stream, and applies
// optional attack/release ballistics before publishing them for the UI to
// poll.
package capture

import "math"

// maxAbsStrided finds the largest absolute sample value belonging to one
// channel of an interleaved buffer: samples[channel], samples[channel+stride],
// samples[channel+2*stride], ... There is no portable SIMD intrinsic in the
// Go toolchain, so this hand-unrolls the loop four samples at a time to cut branch/loop
// overhead the way a vectorized loop would, without pretending to be one.
func maxAbsStrided(samples []float32, channel, stride int) float32 {
	var max float32
	i := channel
	n := len(samples)

	for ; i+3*stride < n; i += 4 * stride {
		a := absf32(samples[i])
		b := absf32(samples[i+stride])
		c := absf32(samples[i+2*stride])
		d := absf32(samples[i+3*stride])
		if a > max {
			max = a
		}
		if b > max {
			max = b
		}
		if c > max {
			max = c
		}
		if d > max {
			max = d
		}
	}
	for ; i < n; i += stride {
		if a := absf32(samples[i]); a > max {
			max = a
		}
	}
	return max
}

func absf32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
