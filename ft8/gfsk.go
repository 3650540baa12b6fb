package ft8

import "math"

// Gaussian-filtered FSK waveform synthesis, ported from the reference gfsk_pulse/
// synth_gfsk pulse-shaping routines.

// gfskConstK = pi * sqrt(2/ln(2)), the constant in the Gaussian-filter error-function
// pulse shape.
const gfskConstK = 5.336446

// FT8SymbolBT and FT4SymbolBT are the Gaussian filter bandwidth-time products for
// each protocol's GFSK pulse.
const (
	FT8SymbolBT = 2.0
	FT4SymbolBT = 1.0
)

// gfskPulse fills pulse (length 3*nSpSym) with the Gaussian FSK smoothing pulse
// for a symbol spanning nSpSym samples at the given bandwidth-time product,
// covering one symbol period on each side of the center symbol.
func gfskPulse(nSpSym int, symbolBT float64, pulse []float64) {
	for i := 0; i < 3*nSpSym; i++ {
		t := float64(i)/float64(nSpSym) - 1.5
		arg1 := gfskConstK * symbolBT * (t + 0.5)
		arg2 := gfskConstK * symbolBT * (t - 0.5)
		pulse[i] = (math.Erf(arg1) - math.Erf(arg2)) / 2.0
	}
}

// SynthGFSK synthesizes a continuous-phase GFSK signal from a tone sequence.
// f0 is the base (tone-0) audio frequency in Hz, symbolBT the Gaussian filter
// bandwidth-time product, symbolPeriod the duration of one symbol in seconds, and
// signalRate the output sample rate in Hz. The result has
// len(symbols)*samplesPerSymbol samples.
func SynthGFSK(symbols []uint8, f0 float64, symbolBT, symbolPeriod float64, signalRate int) []float32 {
	nSym := len(symbols)
	nSpSym := int(0.5 + symbolPeriod*float64(signalRate))
	nSamples := nSym * nSpSym

	pulse := make([]float64, 3*nSpSym)
	gfskPulse(nSpSym, symbolBT, pulse)

	dphi := make([]float64, nSamples+2*nSpSym)
	dphiPeak := 2.0 * math.Pi / float64(nSpSym)

	for i := 0; i < nSym; i++ {
		ib := i * nSpSym
		for j := 0; j < 3*nSpSym; j++ {
			dphi[ib+j] += dphiPeak * float64(symbols[i]) * pulse[j]
		}
	}

	// Boundary symbols: duplicate the first/last symbol's shaping pulse into the
	// ramp-up/ramp-down region outside the sequence proper.
	for j := 0; j < 2*nSpSym; j++ {
		dphi[j] += dphiPeak * float64(symbols[0]) * pulse[j+nSpSym]
	}
	for j := 0; j < 2*nSpSym; j++ {
		dphi[nSamples-nSpSym+j] += dphiPeak * float64(symbols[nSym-1]) * pulse[j]
	}

	for i := range dphi {
		dphi[i] += 2.0 * math.Pi * f0 / float64(signalRate)
	}

	signal := make([]float32, nSamples)
	phi := 0.0
	nRamp := nSpSym / 8
	for k := 0; k < nSamples; k++ {
		signal[k] = float32(math.Sin(phi))
		phi = math.Mod(phi+dphi[k+nSpSym], 2.0*math.Pi)
	}

	for i := 0; i < nRamp; i++ {
		env := 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(2*nRamp)))
		signal[i] *= float32(env)
		signal[nSamples-1-i] *= float32(env)
	}

	return signal
}

// SynthesizeTones renders a full tone sequence for the given protocol at baseFreq
// Hz into a real-valued signal at signalRate samples per second.
func SynthesizeTones(tones []uint8, protocol Protocol, baseFreq float64, signalRate int) []float32 {
	bt := FT8SymbolBT
	if protocol == ProtocolFT4 {
		bt = FT4SymbolBT
	}
	return SynthGFSK(tones, baseFreq, bt, protocol.SymbolTime(), signalRate)
}
