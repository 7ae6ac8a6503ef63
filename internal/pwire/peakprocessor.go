package pwire

// PeakProcessor is the pluggable ballistics function the config layer
// supplies: given the level currently on display and a freshly observed
// one, it returns the value to store. Both the real-time capture callback
// (internal/capture) and the replica's own peaks merge (internal/replica)
// call through the same function value, so a redraw that lags several
// audio buffers behind still smooths consistently rather than snapping.
//
// sampleCount is the number of frames the observation was computed over;
// sampleRate is the capture stream's negotiated rate in Hz. A nil
// PeakProcessor means "store the new value unchanged".
type PeakProcessor func(current, new float32, sampleCount int, sampleRate uint32) float32

// NewBallisticsProcessor returns a one-pole attack/release smoother: attack
// and release are coefficients in [0,1], applied depending on whether the
// new level is rising or falling. 0 disables smoothing for that direction
// (the level jumps straight to the new peak); closer to 1 slows the needle
// down. sampleCount/sampleRate are accepted to satisfy PeakProcessor's
// signature but unused here — time-constant ballistics would derive a
// per-buffer coefficient from them, but a fixed coefficient matches
// wiremix's un-time-compensated smoothing.
func NewBallisticsProcessor(attack, release float32) PeakProcessor {
	return func(current, new float32, sampleCount int, sampleRate uint32) float32 {
		var coeff float32
		if new >= current {
			coeff = attack
		} else {
			coeff = release
		}
		if coeff <= 0 {
			return new
		}
		return current + (new-current)*(1-coeff)
	}
}
