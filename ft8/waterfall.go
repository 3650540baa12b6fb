package ft8

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Waterfall generation: short-time FFT magnitude spectrogram with time and
// frequency oversampling, feeding the Costas sync search and symbol extraction.

// Waterfall is the time-frequency power spectrum produced by a Monitor.
type Waterfall struct {
	MaxBlocks   int // number of blocks (symbols) allocated
	NumBlocks   int // number of blocks (symbols) stored
	NumBins     int // number of 6.25 Hz-equivalent frequency bins
	TimeOSR     int // time oversampling rate
	FreqOSR     int // frequency oversampling rate
	Mag         []uint8
	BlockStride int // TimeOSR * FreqOSR * NumBins
	Protocol    Protocol
	MinBin      int // 6.25 Hz tone bin that the waterfall's bin 0 corresponds to
}

// Monitor owns the FFT state used to build a Waterfall from a stream of audio.
type Monitor struct {
	SymbolPeriod float64
	MinBin       int
	MaxBin       int
	BlockSize    int
	SubblockSize int
	NFFT         int
	FFTNorm      float64
	Window       []float64
	LastFrame    []float64
	Waterfall    *Waterfall
	MaxMag       float64

	fftPlan  *fourier.FFT
	timeData []float64
	freqData []complex128
}

// NewMonitor prepares a Monitor sized for sampleRate audio, the [fMin,fMax] Hz
// search band, the given oversampling factors, and protocol's symbol timing.
func NewMonitor(sampleRate int, fMin, fMax float64, timeOSR, freqOSR int, protocol Protocol) *Monitor {
	symbolPeriod := protocol.SymbolTime()
	blockSize := int(float64(sampleRate) * symbolPeriod)
	subblockSize := blockSize / timeOSR

	// One FFT bin is 1/(freqOSR*symbolPeriod) Hz wide; MinBin/MaxBin count
	// whole 6.25 Hz tone bins.
	nfft := blockSize * freqOSR

	minBin := int(fMin * symbolPeriod)
	maxBin := int(fMax*symbolPeriod) + 1
	numBins := maxBin - minBin

	slotTime := protocol.SlotTime()
	maxBlocks := int(slotTime/symbolPeriod) + 1

	wf := &Waterfall{
		MaxBlocks:   maxBlocks,
		NumBins:     numBins,
		TimeOSR:     timeOSR,
		FreqOSR:     freqOSR,
		Mag:         make([]uint8, maxBlocks*timeOSR*freqOSR*numBins),
		BlockStride: timeOSR * freqOSR * numBins,
		Protocol:    protocol,
		MinBin:      minBin,
	}

	fftNorm := 2.0 / float64(nfft)
	window := make([]float64, nfft)
	for i := 0; i < nfft; i++ {
		x := math.Sin(math.Pi * float64(i) / float64(nfft))
		window[i] = fftNorm * x * x
	}

	return &Monitor{
		SymbolPeriod: symbolPeriod,
		MinBin:       minBin,
		MaxBin:       maxBin,
		BlockSize:    blockSize,
		SubblockSize: subblockSize,
		NFFT:         nfft,
		FFTNorm:      fftNorm,
		Window:       window,
		LastFrame:    make([]float64, nfft),
		Waterfall:    wf,
		MaxMag:       -120.0,
		fftPlan:      fourier.NewFFT(nfft),
		timeData:     make([]float64, nfft),
		freqData:     make([]complex128, nfft/2+1),
	}
}

// Process feeds one symbol's worth of audio into the monitor, advancing the
// waterfall by one block.
func (m *Monitor) Process(frame []float32) {
	for timeSub := 0; timeSub < m.Waterfall.TimeOSR; timeSub++ {
		offset := timeSub * m.SubblockSize

		copy(m.LastFrame, m.LastFrame[m.SubblockSize:])
		for i := 0; i < m.SubblockSize && offset+i < len(frame); i++ {
			m.LastFrame[m.NFFT-m.SubblockSize+i] = float64(frame[offset+i])
		}

		for i := 0; i < m.NFFT; i++ {
			m.timeData[i] = m.LastFrame[i] * m.Window[i]
		}

		m.fft(m.timeData, m.freqData)
		m.extractMagnitudes(timeSub)
	}

	m.Waterfall.NumBlocks++
}

// fft runs the monitor's precomputed FFT plan over input, reusing the plan
// across every block instead of rebuilding it (NFFT is fixed for the life of
// the Monitor, so the plan only needs to be built once in NewMonitor).
func (m *Monitor) fft(input []float64, output []complex128) {
	coeffs := m.fftPlan.Coefficients(nil, input)
	copy(output, coeffs)
}

// extractMagnitudes converts one time-subdivision's FFT output into the
// waterfall's 8-bit dB-scaled magnitude storage.
func (m *Monitor) extractMagnitudes(timeSub int) {
	wf := m.Waterfall
	blockIdx := wf.NumBlocks
	if blockIdx >= wf.MaxBlocks {
		return
	}

	baseIdx := blockIdx*wf.BlockStride + timeSub*wf.FreqOSR*wf.NumBins

	for freqSub := 0; freqSub < wf.FreqOSR; freqSub++ {
		for bin := 0; bin < wf.NumBins; bin++ {
			fftBin := (m.MinBin+bin)*wf.FreqOSR + freqSub
			if fftBin >= len(m.freqData) {
				break
			}

			re := real(m.freqData[fftBin])
			im := imag(m.freqData[fftBin])
			mag2 := re*re + im*im
			magDB := 10.0 * math.Log10(1e-12+mag2)

			if magDB > m.MaxMag {
				m.MaxMag = magDB
			}

			magUint8 := int(2.0*magDB + 240.0)
			if magUint8 < 0 {
				magUint8 = 0
			}
			if magUint8 > 255 {
				magUint8 = 255
			}

			idx := baseIdx + freqSub*wf.NumBins + bin
			if idx < len(wf.Mag) {
				wf.Mag[idx] = uint8(magUint8)
			}
		}
	}
}

// Reset clears the monitor's state for the start of a new time slot.
func (m *Monitor) Reset() {
	m.Waterfall.NumBlocks = 0
	m.MaxMag = -120.0
	for i := range m.LastFrame {
		m.LastFrame[i] = 0.0
	}
}

func nextPowerOf2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
