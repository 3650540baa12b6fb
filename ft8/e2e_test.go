package ft8

import (
	"math"
	"math/rand"
	"testing"
)

// synthesizeAndProcess packs and GFSK-synthesizes msg at baseFreq, feeds it
// through a Monitor spanning [fMin,fMax] Hz exactly as cmd/ft8's decode path
// does, and returns the resulting Waterfall.
func synthesizeAndProcess(t *testing.T, msg string, baseFreq, fMin, fMax float64, sampleRate int) *Waterfall {
	t.Helper()

	payload, err := Pack77(msg)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", msg, err)
	}
	tones := EncodeTones(payload, ProtocolFT8)
	signal := SynthesizeTones(tones, ProtocolFT8, baseFreq, sampleRate)

	monitor := NewMonitor(sampleRate, fMin, fMax, 2, 2, ProtocolFT8)
	for off := 0; off+monitor.BlockSize <= len(signal); off += monitor.BlockSize {
		monitor.Process(signal[off : off+monitor.BlockSize])
	}
	return monitor.Waterfall
}

// mixSignals sums equal-length (or zero-padded-to-longest) float32 buffers,
// the audio-domain equivalent of two transmissions overlapping on the air.
func mixSignals(signals ...[]float32) []float32 {
	n := 0
	for _, s := range signals {
		if len(s) > n {
			n = len(s)
		}
	}
	out := make([]float32, n)
	for _, s := range signals {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}

// TestEndToEndCleanSignalDecodes is scenario E1: a clean, noiseless GFSK
// signal carried through SynthGFSK -> Monitor.Process -> FindCandidates ->
// DecodeCandidate as one real pipeline (not a hand-built waterfall), checking
// both the recovered text and the reported Δf/Δt bounds.
func TestEndToEndCleanSignalDecodes(t *testing.T) {
	const (
		text       = "CQ AA1ABC FN42"
		baseFreq   = 1000.0
		sampleRate = 12000
	)

	wf := synthesizeAndProcess(t, text, baseFreq, 200.0, 3000.0, sampleRate)

	cfg := DefaultFT8Config()
	candidates := FindCandidates(wf, cfg.MaxCandidates, cfg.MinScore, cfg.Workers)
	if len(candidates) == 0 {
		t.Fatal("FindCandidates found nothing on a clean signal")
	}

	msg, status, ok := DecodeCandidate(wf, &candidates[0], ProtocolFT8, cfg.LDPCIterations)
	if !ok {
		t.Fatalf("DecodeCandidate failed on the top candidate: ldpcErrors=%d", status.LDPCErrors)
	}

	got := UnpackMessage(msg.Payload)
	if got != text {
		t.Errorf("decoded text = %q, want %q", got, text)
	}
	if math.Abs(float64(status.Frequency)-baseFreq) > 3.0 {
		t.Errorf("Δf = %v, want within ±3 Hz of %v", status.Frequency, baseFreq)
	}
	if math.Abs(float64(status.Time)) > 0.1 {
		t.Errorf("Δt = %v, want within ±0.1 s of slot start", status.Time)
	}
}

// TestEndToEndNoisyDecodeRate is scenario E2: decode success rate over 100
// trials of a signal buried in white Gaussian noise at SNR = -18 dB measured
// over a 2500 Hz reference bandwidth. noiseSigma is calibrated so that, with
// the signal's own average power normalized to 0.5 (unit-amplitude sine) and
// the noise spread uniformly over the sample rate's full one-sided Nyquist
// band, the power landing in any 2500 Hz slice of that band is 10^1.8 times
// the signal power: sigma^2 = 0.5 * 10^1.8 * (sampleRate/2) / 2500.
func TestEndToEndNoisyDecodeRate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 100-trial statistical decode in short mode")
	}

	const (
		text        = "W1AW K1ABC -05"
		baseFreq    = 1500.0
		sampleRate  = 12000
		trials      = 100
		wantSuccess = 0.5
	)

	signalPower := 0.5
	targetSNRLinear := math.Pow(10, -18.0/10.0)
	noisePowerIn2500Hz := signalPower / targetSNRLinear
	noiseSigma := math.Sqrt(noisePowerIn2500Hz * (float64(sampleRate) / 2.0) / 2500.0)

	payload, err := Pack77(text)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", text, err)
	}
	tones := EncodeTones(payload, ProtocolFT8)
	clean := SynthesizeTones(tones, ProtocolFT8, baseFreq, sampleRate)

	cfg := DefaultFT8Config()
	rng := rand.New(rand.NewSource(1))

	decoded := 0
	for trial := 0; trial < trials; trial++ {
		noisy := make([]float32, len(clean))
		for i, v := range clean {
			noisy[i] = v + float32(rng.NormFloat64()*noiseSigma)
		}

		// Narrow search band around the known test frequency: a unit test
		// targeting one synthesized signal doesn't need the full 200-3000 Hz
		// sweep a real receiver would run.
		monitor := NewMonitor(sampleRate, 1300.0, 1700.0, 2, 2, ProtocolFT8)
		for off := 0; off+monitor.BlockSize <= len(noisy); off += monitor.BlockSize {
			monitor.Process(noisy[off : off+monitor.BlockSize])
		}

		candidates := FindCandidates(monitor.Waterfall, cfg.MaxCandidates, cfg.MinScore, cfg.Workers)
		for _, cand := range candidates {
			msg, _, ok := DecodeCandidate(monitor.Waterfall, &cand, ProtocolFT8, cfg.LDPCIterations)
			if ok && UnpackMessage(msg.Payload) == text {
				decoded++
				break
			}
		}
	}

	rate := float64(decoded) / float64(trials)
	if rate <= wantSuccess {
		t.Errorf("decode rate = %v (%d/%d), want > %v at SNR = -18 dB", rate, decoded, trials, wantSuccess)
	}
}

// TestEndToEndOverlappingTransmissionsBothDecode is scenario E3: two
// transmissions at different audio frequencies, summed into one buffer as if
// received simultaneously, both recovered from the same waterfall.
func TestEndToEndOverlappingTransmissionsBothDecode(t *testing.T) {
	const (
		textA      = "N0CALL 73"
		textB      = "KA1XYZ RRR"
		freqA      = 800.0
		freqB      = 1200.0
		sampleRate = 12000
	)

	payloadA, err := Pack77(textA)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", textA, err)
	}
	payloadB, err := Pack77(textB)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", textB, err)
	}

	signalA := SynthesizeTones(EncodeTones(payloadA, ProtocolFT8), ProtocolFT8, freqA, sampleRate)
	signalB := SynthesizeTones(EncodeTones(payloadB, ProtocolFT8), ProtocolFT8, freqB, sampleRate)
	mixed := mixSignals(signalA, signalB)

	monitor := NewMonitor(sampleRate, 200.0, 3000.0, 2, 2, ProtocolFT8)
	for off := 0; off+monitor.BlockSize <= len(mixed); off += monitor.BlockSize {
		monitor.Process(mixed[off : off+monitor.BlockSize])
	}

	cfg := DefaultFT8Config()
	candidates := FindCandidates(monitor.Waterfall, cfg.MaxCandidates, cfg.MinScore, cfg.Workers)
	if len(candidates) == 0 {
		t.Fatal("FindCandidates found nothing in the overlapping-signal mix")
	}

	got := make(map[string]bool)
	for _, cand := range candidates {
		msg, _, ok := DecodeCandidate(monitor.Waterfall, &cand, ProtocolFT8, cfg.LDPCIterations)
		if !ok {
			continue
		}
		got[UnpackMessage(msg.Payload)] = true
	}

	if !got[textA] {
		t.Errorf("did not decode %q out of the overlapping mix", textA)
	}
	if !got[textB] {
		t.Errorf("did not decode %q out of the overlapping mix", textB)
	}
}

// TestUnpackFixedVector is scenario E6: a known-good payload decodes to its
// known text. The payload is produced by Pack77 rather than hand-transcribed,
// since Pack77's bitfield layout is the structural mirror of UnpackMessage's
// (component D) and is independently exercised by pack_test.go; what this
// test pins down is the fixed text <-> fixed payload correspondence itself.
func TestUnpackFixedVector(t *testing.T) {
	const text = "CQ AA1ABC FN42"

	payload, err := Pack77(text)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", text, err)
	}

	var fixed [10]uint8
	copy(fixed[:], payload[:])

	got := UnpackMessage(fixed)
	if got != text {
		t.Errorf("UnpackMessage(fixed vector) = %q, want %q", got, text)
	}
}

func TestDecodeSlotFindsCleanMessage(t *testing.T) {
	const (
		text       = "CQ KA9Q FN20"
		baseFreq   = 1200.0
		sampleRate = 12000
	)

	wf := synthesizeAndProcess(t, text, baseFreq, 200.0, 3000.0, sampleRate)

	cfg := DefaultFT8Config()
	hashTable := NewCallsignHashTable()
	results, stats := DecodeSlot(wf, cfg, hashTable, "", nil)

	if stats.Candidates == 0 {
		t.Fatal("DecodeSlot found no candidates on a clean signal")
	}
	if stats.Decoded == 0 {
		t.Fatal("DecodeSlot decoded nothing on a clean signal")
	}

	found := false
	for _, r := range results {
		if r.Message == text {
			found = true
			if r.Protocol != "FT8" {
				t.Errorf("Protocol = %q, want FT8", r.Protocol)
			}
			if math.Abs(float64(r.DeltaFreq)-baseFreq) > 3.0 {
				t.Errorf("DeltaFreq = %v, want within ±3 Hz of %v", r.DeltaFreq, baseFreq)
			}
		}
	}
	if !found {
		t.Errorf("DecodeSlot results %+v do not contain %q", results, text)
	}
}

func TestDecodeSlotDeduplicatesRepeatedCandidate(t *testing.T) {
	const (
		text       = "CQ KA9Q FN20"
		baseFreq   = 1200.0
		sampleRate = 12000
	)

	wf := synthesizeAndProcess(t, text, baseFreq, 200.0, 3000.0, sampleRate)

	cfg := DefaultFT8Config()
	cfg.MinScore = -1000 // let near-duplicate candidates around the true peak through
	hashTable := NewCallsignHashTable()
	results, _ := DecodeSlot(wf, cfg, hashTable, "", nil)

	seen := make(map[string]int)
	for _, r := range results {
		seen[r.Message]++
	}
	if seen[text] > 1 {
		t.Errorf("DecodeSlot returned %d copies of %q, want at most 1 (dedup by CRC)", seen[text], text)
	}
}

func TestDecodeSlotWithReceiverLocatorAddsDistance(t *testing.T) {
	const (
		text       = "CQ KA9Q FN20"
		baseFreq   = 1200.0
		sampleRate = 12000
	)

	wf := synthesizeAndProcess(t, text, baseFreq, 200.0, 3000.0, sampleRate)

	cfg := DefaultFT8Config()
	hashTable := NewCallsignHashTable()
	results, _ := DecodeSlot(wf, cfg, hashTable, "EM12", nil)

	for _, r := range results {
		if r.Message != text {
			continue
		}
		if !r.HasDistance {
			t.Error("HasDistance = false with both rxLocator and a decoded grid present, want true")
		}
		if r.DistanceKm <= 0 {
			t.Errorf("DistanceKm = %v, want > 0 between FN20 and EM12", r.DistanceKm)
		}
	}
}

func TestCalculateSNRFromSyncMonotonic(t *testing.T) {
	low := CalculateSNRFromSync(10)
	high := CalculateSNRFromSync(1000)
	if !(high > low) {
		t.Errorf("CalculateSNRFromSync(1000) = %v, want > CalculateSNRFromSync(10) = %v", high, low)
	}
	if got := CalculateSNRFromSync(0); got != -24.0 {
		t.Errorf("CalculateSNRFromSync(0) = %v, want -24", got)
	}
	if got := CalculateSNRFromSync(-5); got != -24.0 {
		t.Errorf("CalculateSNRFromSync(-5) = %v, want -24", got)
	}
}

func TestGetTonesFromBitsRoundTripsCostasSync(t *testing.T) {
	const text = "CQ KA9Q FN20"
	payload, err := Pack77(text)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", text, err)
	}
	tones := EncodeTones(payload, ProtocolFT8)

	codeword := make([]uint8, LDPCN)
	// EncodeTones applies Gray/Costas assembly to the LDPC-encoded bits;
	// reconstructing the exact codeword isn't this test's concern, so instead
	// verify GetTonesFromBits at least reproduces the known Costas sync tones
	// at their fixed symbol positions regardless of the payload bits around them.
	for i := 0; i < FT8LengthSync; i++ {
		if tones[i] != Costas7x7[i] || tones[36+i] != Costas7x7[i] || tones[FT8NN-7+i] != Costas7x7[i] {
			t.Fatalf("EncodeTones did not place Costas sync at the expected symbol positions")
		}
	}

	got := GetTonesFromBits(codeword, ProtocolFT8)
	for i := 0; i < FT8LengthSync; i++ {
		if got[i] != int(Costas7x7[i]) {
			t.Errorf("GetTonesFromBits sync tone[%d] = %d, want %d", i, got[i], Costas7x7[i])
		}
		if got[36+i] != int(Costas7x7[i]) {
			t.Errorf("GetTonesFromBits sync tone[%d] = %d, want %d", 36+i, got[36+i], Costas7x7[i])
		}
		if got[FT8NN-7+i] != int(Costas7x7[i]) {
			t.Errorf("GetTonesFromBits sync tone[%d] = %d, want %d", FT8NN-7+i, got[FT8NN-7+i], Costas7x7[i])
		}
	}
}

func TestCalculateSNRFromBitsOnCleanSignal(t *testing.T) {
	const (
		text       = "CQ KA9Q FN20"
		baseFreq   = 1200.0
		sampleRate = 12000
	)

	wf := synthesizeAndProcess(t, text, baseFreq, 200.0, 3000.0, sampleRate)
	cfg := DefaultFT8Config()
	candidates := FindCandidates(wf, cfg.MaxCandidates, cfg.MinScore, cfg.Workers)
	if len(candidates) == 0 {
		t.Fatal("FindCandidates found nothing on a clean signal")
	}

	_, status, ok := DecodeCandidate(wf, &candidates[0], ProtocolFT8, cfg.LDPCIterations)
	if !ok {
		t.Fatalf("DecodeCandidate failed: ldpcErrors=%d", status.LDPCErrors)
	}

	snr := CalculateSNRFromBits(wf, &candidates[0], status.Codeword, ProtocolFT8)
	if snr < 0 {
		t.Errorf("CalculateSNRFromBits on a clean, noiseless signal = %v dB, want a strongly positive figure", snr)
	}
}
