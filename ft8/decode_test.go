package ft8

import "testing"

// buildTonesWaterfall hand-builds a Waterfall whose magnitude at every symbol's
// transmitted tone is 255 and 0 elsewhere, reproducing what a clean, noiseless
// signal would look like after STFT magnitude scaling - without going through
// audio synthesis or FFT at all.
func buildTonesWaterfall(tones []uint8, freqOffset, numBins int) *Waterfall {
	numBlocks := len(tones)
	wf := &Waterfall{
		MaxBlocks:   numBlocks,
		NumBlocks:   numBlocks,
		NumBins:     numBins,
		TimeOSR:     1,
		FreqOSR:     1,
		BlockStride: numBins,
		Mag:         make([]uint8, numBlocks*numBins),
		Protocol:    ProtocolFT8,
	}
	for row, tone := range tones {
		wf.Mag[row*numBins+freqOffset+int(tone)] = 255
	}
	return wf
}

func TestDecodeCandidateRecoversCleanMessage(t *testing.T) {
	const text = "CQ KA9Q FN20"

	payload, err := Pack77(text)
	if err != nil {
		t.Fatalf("Pack77(%q): %v", text, err)
	}

	tones := EncodeTones(payload, ProtocolFT8)
	if len(tones) != FT8NN {
		t.Fatalf("len(tones) = %d, want %d", len(tones), FT8NN)
	}

	const freqOffset = 4
	wf := buildTonesWaterfall(tones, freqOffset, 20)

	cand := &Candidate{TimeOffset: 0, FreqOffset: freqOffset, TimeSub: 0, FreqSub: 0}

	msg, status, ok := DecodeCandidate(wf, cand, ProtocolFT8, 25)
	if !ok {
		t.Fatalf("DecodeCandidate failed: ldpcErrors=%d crcExtracted=%x crcCalculated=%x",
			status.LDPCErrors, status.CRCExtracted, status.CRCCalculated)
	}
	if status.LDPCErrors != 0 {
		t.Errorf("LDPCErrors = %d, want 0", status.LDPCErrors)
	}

	got := UnpackMessage(msg.Payload)
	if got != text {
		t.Errorf("UnpackMessage = %q, want %q", got, text)
	}
}

func TestDecodeCandidateRejectsGarbage(t *testing.T) {
	numBins := 20
	numBlocks := FT8NN
	wf := &Waterfall{
		MaxBlocks:   numBlocks,
		NumBlocks:   numBlocks,
		NumBins:     numBins,
		TimeOSR:     1,
		FreqOSR:     1,
		BlockStride: numBins,
		Mag:         make([]uint8, numBlocks*numBins),
		Protocol:    ProtocolFT8,
	}
	// Flat noise floor: every bin equally likely, LLRs near zero.
	for i := range wf.Mag {
		wf.Mag[i] = 120
	}

	cand := &Candidate{TimeOffset: 0, FreqOffset: 4}
	_, status, ok := DecodeCandidate(wf, cand, ProtocolFT8, 25)
	if ok {
		t.Error("DecodeCandidate succeeded on a flat noise floor, want failure")
	}
	if status.LDPCErrors == 0 {
		t.Error("LDPCErrors = 0 on noise, want > 0 (or a CRC mismatch)")
	}
}
