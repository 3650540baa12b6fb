package ft8

import "math"

// Symbol extraction: turns waterfall magnitudes at a candidate's time/frequency
// position into the 174 soft-decision log-likelihood ratios LDPC decoding needs.

// ExtractLikelihood extracts and normalizes the 174 LLRs for cand.
func ExtractLikelihood(wf *Waterfall, cand *Candidate, protocol Protocol) []float32 {
	log174 := make([]float32, LDPCN)

	if protocol == ProtocolFT4 {
		extractLikelihoodFT4(wf, cand, log174)
	} else {
		extractLikelihoodFT8(wf, cand, log174)
	}

	normalizeLikelihood(log174)
	return log174
}

func extractLikelihoodFT8(wf *Waterfall, cand *Candidate, log174 []float32) {
	baseIdx := getCandidateIndex(wf, cand)

	for k := 0; k < FT8ND; k++ {
		var symIdx int
		if k < 29 {
			symIdx = k + 7
		} else {
			symIdx = k + 14
		}

		bitIdx := 3 * k
		block := int(cand.TimeOffset) + symIdx
		if block < 0 || block >= wf.NumBlocks {
			log174[bitIdx+0] = 0
			log174[bitIdx+1] = 0
			log174[bitIdx+2] = 0
			continue
		}

		magIdx := baseIdx + symIdx*wf.BlockStride
		extractSymbolFT8(wf.Mag, magIdx, log174[bitIdx:bitIdx+3])
	}
}

func extractLikelihoodFT4(wf *Waterfall, cand *Candidate, log174 []float32) {
	baseIdx := getCandidateIndex(wf, cand)

	for k := 0; k < FT4ND; k++ {
		var symIdx int
		switch {
		case k < 29:
			symIdx = k + 5
		case k < 58:
			symIdx = k + 9
		default:
			symIdx = k + 13
		}

		bitIdx := 2 * k
		block := int(cand.TimeOffset) + symIdx
		if block < 0 || block >= wf.NumBlocks {
			log174[bitIdx+0] = 0
			log174[bitIdx+1] = 0
			continue
		}

		magIdx := baseIdx + symIdx*wf.BlockStride
		extractSymbolFT4(wf.Mag, magIdx, log174[bitIdx:bitIdx+2])
	}
}

// extractSymbolFT8 computes the three bit LLRs for one 8-FSK symbol: each bit
// splits the Gray-coded tone alphabet into two groups of four, and the LLR is the
// strongest tone in the "bit=1" group minus the strongest in the "bit=0" group.
func extractSymbolFT8(mag []uint8, idx int, logl []float32) {
	var s2 [8]float32
	for j := 0; j < 8; j++ {
		grayIdx := int(GrayMap8[j])
		if idx+grayIdx < len(mag) {
			s2[j] = float32(mag[idx+grayIdx])*0.5 - 120.0
		}
	}

	logl[0] = max4(s2[4], s2[5], s2[6], s2[7]) - max4(s2[0], s2[1], s2[2], s2[3])
	logl[1] = max4(s2[2], s2[3], s2[6], s2[7]) - max4(s2[0], s2[1], s2[4], s2[5])
	logl[2] = max4(s2[1], s2[3], s2[5], s2[7]) - max4(s2[0], s2[2], s2[4], s2[6])
}

// extractSymbolFT4 computes the two bit LLRs for one 4-FSK symbol.
func extractSymbolFT4(mag []uint8, idx int, logl []float32) {
	var s2 [4]float32
	for j := 0; j < 4; j++ {
		grayIdx := int(GrayMap4[j])
		if idx+grayIdx < len(mag) {
			s2[j] = float32(mag[idx+grayIdx])*0.5 - 120.0
		}
	}

	logl[0] = max2(s2[2], s2[3]) - max2(s2[0], s2[1])
	logl[1] = max2(s2[1], s2[3]) - max2(s2[0], s2[2])
}

// normalizeLikelihood rescales log174 to a fixed variance of 24, an empirical
// scaling the belief-propagation decoder's tanh/atanh approximations are tuned for.
func normalizeLikelihood(log174 []float32) {
	var sum, sum2 float32
	for i := 0; i < LDPCN; i++ {
		sum += log174[i]
		sum2 += log174[i] * log174[i]
	}

	invN := 1.0 / float32(LDPCN)
	variance := (sum2 - (sum * sum * invN)) * invN
	if variance <= 0 {
		return
	}

	normFactor := float32(math.Sqrt(float64(24.0 / variance)))
	for i := 0; i < LDPCN; i++ {
		log174[i] *= normFactor
	}
}

func getCandidateIndex(wf *Waterfall, cand *Candidate) int {
	offset := int(cand.TimeOffset)
	offset = (offset * wf.TimeOSR) + int(cand.TimeSub)
	offset = (offset * wf.FreqOSR) + int(cand.FreqSub)
	offset = (offset * wf.NumBins) + int(cand.FreqOffset)
	return offset
}

func max2(a, b float32) float32 {
	if a >= b {
		return a
	}
	return b
}

func max4(a, b, c, d float32) float32 {
	return max2(max2(a, b), max2(c, d))
}
